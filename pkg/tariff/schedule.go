// Package tariff resolves the fixed EV2A-style time-of-use tariff. The rate
// for a timestamp depends only on its local calendar month and hour, so every
// function here is pure and total.
package tariff

import "time"

// Season splits the year into the two TOU pricing seasons.
type Season int

const (
	SeasonWinter Season = iota
	SeasonSummer
)

func (s Season) String() string {
	if s == SeasonSummer {
		return "summer"
	}
	return "winter"
}

// Period is the intra-day TOU pricing period.
type Period int

const (
	PeriodOffPeak Period = iota
	PeriodPartialPeak
	PeriodPeak
)

func (p Period) String() string {
	switch p {
	case PeriodPeak:
		return "peak"
	case PeriodPartialPeak:
		return "partial-peak"
	default:
		return "off-peak"
	}
}

// Fixed $/kWh rates for each (season, period) pair.
const (
	summerPeakRate        = 0.62277
	summerPartialPeakRate = 0.51228
	summerOffPeakRate     = 0.31026

	winterPeakRate        = 0.49566
	winterPartialPeakRate = 0.47896
	winterOffPeakRate     = 0.31027
)

// SeasonOf returns the season for the timestamp's local calendar month.
// June through September is summer.
func SeasonOf(t time.Time) Season {
	if m := t.Month(); m >= time.June && m <= time.September {
		return SeasonSummer
	}
	return SeasonWinter
}

// PeriodOf returns the pricing period for a local hour of day (0-23).
// Peak runs 16:00-20:59, partial-peak covers 15:00-15:59 and 21:00-23:59.
func PeriodOf(hour int) Period {
	switch {
	case hour >= 16 && hour <= 20:
		return PeriodPeak
	case hour == 15 || (hour >= 21 && hour <= 23):
		return PeriodPartialPeak
	default:
		return PeriodOffPeak
	}
}

// Rate returns the fixed TOU rate in $/kWh for the given timestamp.
func Rate(t time.Time) float64 {
	season := SeasonOf(t)
	period := PeriodOf(t.Hour())

	if season == SeasonSummer {
		switch period {
		case PeriodPeak:
			return summerPeakRate
		case PeriodPartialPeak:
			return summerPartialPeakRate
		default:
			return summerOffPeakRate
		}
	}
	switch period {
	case PeriodPeak:
		return winterPeakRate
	case PeriodPartialPeak:
		return winterPartialPeakRate
	default:
		return winterOffPeakRate
	}
}

// Cost returns what the usage would cost under the TOU tariff.
func Cost(t time.Time, usageKWH float64) float64 {
	return usageKWH * Rate(t)
}

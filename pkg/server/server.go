// Package server exposes the savings dashboard API: usage uploads, the
// savings ledger, TOU rates, and the subscription baseline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/flexpilot/flexpilot/pkg/baseline"
	"github.com/flexpilot/flexpilot/pkg/log"
	"github.com/flexpilot/flexpilot/pkg/pricing"
	"github.com/flexpilot/flexpilot/pkg/types"
	"github.com/levenlabs/go-lflag"
)

// tokenVerifier validates an OIDC ID token and returns its email claims.
// It is a func so tests can stub out the real verifier.
type tokenVerifier func(ctx context.Context, rawIDToken string) (email string, verified bool, err error)

// Server handles the HTTP API for the flex savings dashboard. Uploaded usage
// and the derived baseline live in memory only; the dashboard is a
// per-process, single-household tool.
type Server struct {
	pricing pricing.Provider

	listenAddr    string
	serverName    string
	usageLocation *time.Location
	bypassAuth    bool
	allowedEmails []string
	oidcVerifier  tokenVerifier
	httpServer    *http.Server

	mu           sync.Mutex
	table        baseline.Table
	currentUsage []types.UsageRecord
}

// Configured initializes the Server with its pricing provider.
// It uses lflag to register command-line flags for configuration.
func Configured(p pricing.Provider) *Server {
	srv := &Server{
		pricing:    p,
		serverName: "flexpilot",
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	usageTZ := lflag.String("usage-timezone", "Local", "IANA timezone the usage CSV timestamps are in")
	oidcAudience := lflag.String("oidc-audience", "", "Google OIDC audience/client ID; empty disables auth")
	allowedEmails := lflag.String("allowed-emails", "", "comma-delimited emails allowed to use the API when auth is enabled")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr

		loc, err := time.LoadLocation(*usageTZ)
		if err != nil {
			log.Ctx(context.Background()).Error("invalid usage-timezone", slog.String("tz", *usageTZ), slog.Any("error", err))
			os.Exit(1)
		}
		srv.usageLocation = loc

		if *allowedEmails != "" {
			for _, email := range strings.Split(*allowedEmails, ",") {
				srv.allowedEmails = append(srv.allowedEmails, strings.TrimSpace(email))
			}
		}

		if *oidcAudience == "" {
			srv.bypassAuth = true
			return
		}
		provider, err := oidc.NewProvider(context.Background(), "https://accounts.google.com")
		if err != nil {
			log.Ctx(context.Background()).Error("failed to initialize Google OIDC provider", slog.Any("error", err))
			os.Exit(1)
		}
		verifier := provider.Verifier(&oidc.Config{ClientID: *oidcAudience})
		srv.oidcVerifier = func(ctx context.Context, rawIDToken string) (string, bool, error) {
			idToken, err := verifier.Verify(ctx, rawIDToken)
			if err != nil {
				return "", false, err
			}
			var claims struct {
				Email         string `json:"email"`
				EmailVerified bool   `json:"email_verified"`
			}
			if err := idToken.Claims(&claims); err != nil {
				return "", false, err
			}
			return claims.Email, claims.EmailVerified, nil
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/usage/historical", s.handleUploadHistorical)
	apiMux.HandleFunc("POST /api/usage/current", s.handleUploadCurrent)
	apiMux.HandleFunc("GET /api/savings", s.handleSavings)
	apiMux.HandleFunc("GET /api/rates", s.handleRates)
	apiMux.HandleFunc("GET /api/baseline", s.handleBaseline)
	apiMux.HandleFunc("GET /api/price/current", s.handleCurrentPrice)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.authMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)

	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an
// error occurs, shutting down gracefully on cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// maxTimeRange bounds savings/rates queries; a billing period is at most a
// month of hourly records.
const maxTimeRange = 31 * 24 * time.Hour

func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		// Default to the last 24 hours if not specified.
		end := time.Now()
		return end.Add(-24 * time.Hour), end, nil
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("start time must be before end time")
	}
	if end.Sub(start) > maxTimeRange {
		return time.Time{}, time.Time{}, fmt.Errorf("time range cannot exceed %s", maxTimeRange)
	}
	return start, end, nil
}

// setHistoryCacheControl follows the convention that settled days are
// immutable: ranges ending before today cache for a day, anything touching
// today caches for a minute.
func setHistoryCacheControl(w http.ResponseWriter, end time.Time) {
	today := time.Now().Truncate(24 * time.Hour)
	if end.Before(today) {
		w.Header().Set("Cache-Control", "private, max-age=86400")
	} else {
		w.Header().Set("Cache-Control", "private, max-age=60")
	}
}

package log

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxAndWith(t *testing.T) {
	ctx := context.Background()

	// No logger in the context: the default is returned.
	got := Ctx(ctx)
	require.NotNil(t, got)
	assert.Equal(t, defaultLogger, got)

	custom := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	require.NotEqual(t, defaultLogger, custom)

	got = Ctx(With(ctx, custom))
	assert.Equal(t, custom, got)
}

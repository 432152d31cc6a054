package closers

import (
	"context"
	"io"

	loggingutils "github.com/leafcoder/escrow-go/logging"
)

// Log calls Close on the specified closer, logging on error
func Log(ctx context.Context, c io.Closer) {
	logger := loggingutils.Logger(ctx, "closers.Log")

	if err := c.Close(); err != nil {
		logger.Error().Err(err).Msg("error attempting to close")
	}
}

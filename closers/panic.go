package closers

import (
	"context"
	"errors"
	"io"

	"github.com/leafcoder/escrow-go/logging"
)

// Panic calls Close on the specified closer, panicking on error
func Panic(ctx context.Context, c io.Closer) {
	logger := logging.Logger(ctx, "closers.Panic")
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Error().Err(err).Msg("error attempting to close")
		if errors.Is(err, context.Canceled) || err.Error() == "context canceled" {
			// a context timeout on the http client manifests as this when the
			// stream is not fully read in time; not worth dying over
			return
		}
		panic(err.Error())
	}
}

package closer

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// CloseWithLogOnError will close the given resource and log any relevant failure
func CloseWithLogOnError(name string, c io.Closer) {
	err := c.Close()
	if err == nil || errors.Is(err, os.ErrClosed) {
		return
	}

	l := log.With().CallerWithSkipFrameCount(3).Logger()
	l.Err(err).Msgf("Failed to close %s", name)
}

// ContextCloser is a resource whose shutdown takes a context, such as a
// sandbox or an engine runtime.
type ContextCloser interface {
	Close(ctx context.Context) error
}

// ContextCloserWithLogOnError closes the given resource and logs any
// relevant failure against the context's logger.
func ContextCloserWithLogOnError(ctx context.Context, name string, c ContextCloser) {
	err := c.Close(ctx)
	if err == nil || errors.Is(err, os.ErrClosed) {
		return
	}

	log.Ctx(ctx).Err(err).Msgf("Failed to close %s", name)
}

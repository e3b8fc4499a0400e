//go:build unit || !integration

package closer

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	err    error
	closed bool
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

type fakeContextCloser struct {
	err    error
	closed bool
}

func (f *fakeContextCloser) Close(context.Context) error {
	f.closed = true
	return f.err
}

func TestCloseWithLogOnError(t *testing.T) {
	for name, err := range map[string]error{
		"nil error":      nil,
		"already closed": os.ErrClosed,
		"real error":     errors.New("close failed"),
	} {
		t.Run(name, func(t *testing.T) {
			c := &fakeCloser{err: err}
			CloseWithLogOnError("resource", c)
			require.True(t, c.closed)
		})
	}
}

func TestContextCloserWithLogOnError(t *testing.T) {
	c := &fakeContextCloser{err: errors.New("close failed")}
	ContextCloserWithLogOnError(context.Background(), "resource", c)
	require.True(t, c.closed)
}

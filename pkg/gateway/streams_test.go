//go:build unit || !integration

package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamZeroValueInheritsProcessStreams(t *testing.T) {
	var s Stream
	require.Equal(t, os.Stdin, s.input(os.Stdin))
	require.Equal(t, os.Stderr, s.output(os.Stderr))
	require.NoError(t, s.Close())
}

func TestStreamFromFDSentinelMeansDefault(t *testing.T) {
	s, err := StreamFromFD(DescriptorDefault)
	require.NoError(t, err)
	require.Equal(t, os.Stdout, s.output(os.Stdout))
	require.NoError(t, s.Close())
}

func TestStreamFromFDInvalidDescriptor(t *testing.T) {
	_, err := StreamFromFD(1 << 20)
	require.ErrorIs(t, err, ErrStreamBinding)
}

func TestStreamFromFDDuplicatesAndNeverClosesTheCallerHandle(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	s, err := StreamFromFD(int32(f.Fd()))
	require.NoError(t, err)

	_, err = s.output(os.Stdout).Write([]byte("written through the duplicate\n"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// The caller's handle must still be open and usable.
	_, err = f.WriteString("written through the original\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	contents, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	require.Equal(t, "written through the duplicate\nwritten through the original\n", string(contents))
}

//go:build unit || !integration

package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmbed-project/wasmbed/pkg/engine"
)

// The numeric values below are a published compatibility surface; this
// test exists to make changing them a deliberate act.
func TestCodeValuesAreFrozen(t *testing.T) {
	require.Equal(t, int32(-1), CodeInternal)
	require.Equal(t, int32(-2), CodeBadRequest)
	require.Equal(t, int32(-10), CodeInvalidModule)
	require.Equal(t, int32(-11), CodeUnsupportedFeature)
	require.Equal(t, int32(-12), CodeNoEntryPoint)
	require.Equal(t, int32(-20), CodeSandboxSetup)
	require.Equal(t, int32(-21), CodeStreamBinding)
	require.Equal(t, int32(-30), CodeGuestTrap)
}

func TestCodeForError(t *testing.T) {
	testCases := []struct {
		err      error
		expected int32
	}{
		{nil, 0},
		{fmt.Errorf("%w: empty module buffer", ErrBadRequest), CodeBadRequest},
		{fmt.Errorf("%w: stdin", ErrStreamBinding), CodeStreamBinding},
		{fmt.Errorf("%w: bad magic", engine.ErrInvalidModule), CodeInvalidModule},
		{fmt.Errorf("%w: sockets", engine.ErrUnsupportedFeature), CodeUnsupportedFeature},
		{fmt.Errorf("%w", engine.ErrNoEntryPoint), CodeNoEntryPoint},
		{fmt.Errorf("%w: no memory", engine.ErrSandboxSetup), CodeSandboxSetup},
		{&engine.TrapError{Cause: errors.New("division by zero")}, CodeGuestTrap},
		{errors.New("anything else"), CodeInternal},
	}

	for _, testCase := range testCases {
		require.Equal(t, testCase.expected, CodeForError(testCase.err), "error: %v", testCase.err)
	}
}

func TestAllCodesAreNegativeAndDistinct(t *testing.T) {
	codes := []int32{
		CodeInternal, CodeBadRequest, CodeInvalidModule, CodeUnsupportedFeature,
		CodeNoEntryPoint, CodeSandboxSetup, CodeStreamBinding, CodeGuestTrap,
	}
	seen := map[int32]bool{}
	for _, code := range codes {
		require.Negative(t, code)
		require.False(t, seen[code], "duplicate code %d", code)
		seen[code] = true
	}
}

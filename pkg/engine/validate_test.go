//go:build unit || !integration

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmbed-project/wasmbed/testdata/wasm/noop"
)

func TestValidateModuleBytes(t *testing.T) {
	testCases := []struct {
		name         string
		program      []byte
		errorChecker func(t require.TestingT, err error, _ ...any)
	}{
		{
			name:         "well-formed module",
			program:      noop.Program(),
			errorChecker: require.NoError,
		},
		{
			name:         "bare preamble is still well-formed",
			program:      []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
			errorChecker: require.NoError,
		},
		{
			name:         "empty buffer",
			program:      []byte{},
			errorChecker: require.Error,
		},
		{
			name:         "truncated preamble",
			program:      []byte{0x00, 0x61, 0x73},
			errorChecker: require.Error,
		},
		{
			name:         "wrong magic number",
			program:      []byte{0x00, 0x61, 0x73, 0x6e, 0x01, 0x00, 0x00, 0x00},
			errorChecker: require.Error,
		},
		{
			name:         "unsupported binary version",
			program:      []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00},
			errorChecker: require.Error,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := ValidateModuleBytes(testCase.program)
			testCase.errorChecker(t, err)
			if err != nil {
				require.ErrorIs(t, err, ErrInvalidModule)
			}
		})
	}
}

//go:build unit || !integration

package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptionIsNonEmptyAndStable(t *testing.T) {
	first := Description()
	require.NotEmpty(t, first)
	require.Contains(t, first, Number)
	require.Contains(t, first, Engine)

	for i := 0; i < 100; i++ {
		require.Equal(t, first, Description())
	}
}

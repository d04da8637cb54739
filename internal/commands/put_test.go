package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shu85t/PutOuCostCategory/internal/category"
)

func TestParseDepth(t *testing.T) {
	depth, err := parseDepth("3")
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	depth, err = parseDepth("1")
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
}

func TestParseDepth_Invalid(t *testing.T) {
	for _, s := range []string{"0", "-1", "x", "", "1.5"} {
		_, err := parseDepth(s)
		require.ErrorIs(t, err, category.ErrInvalidDepth, "input %q", s)
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["put"])
	assert.True(t, names["preview"])
	assert.True(t, names["report"])
}

func TestNewLogger_InvalidLevelFallsBack(t *testing.T) {
	log := newLogger("nonsense")
	require.NotNil(t, log)
	// Still usable after the fallback.
	log.Debug("ignored")
}

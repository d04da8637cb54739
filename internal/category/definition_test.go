package category

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, s := range []string{"", "2025", "2025-13", "03-2025", "2025-03-01"} {
		_, err := ParseMonth(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestEffectiveStartString(t *testing.T) {
	def := Definition{EffectiveStart: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2025-03-01T00:00:00Z", def.EffectiveStartString())
}

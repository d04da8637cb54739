package category

import (
	"fmt"
	"time"
)

// DefaultValue is the category value the store assigns to any cost that
// matches no rule. Given the partition invariant no account should ever
// land there; it exists so the store has a well-known bucket if one does.
const DefaultValue = "Uncategorized"

// effectiveStartLayout is the timestamp format the store expects for
// EffectiveStart.
const effectiveStartLayout = "2006-01-02T15:04:05Z"

// Definition is the desired state of one remote cost category: its name,
// the month it takes effect, the generated rules, and the fallback value.
// The store owns the persisted artifact; this is only the value we want it
// to hold.
type Definition struct {
	Name           string
	EffectiveStart time.Time
	DefaultValue   string
	Rules          []Rule
}

// EffectiveStartString renders the effective start the way the store wants
// it: first instant of the month, UTC.
func (d Definition) EffectiveStartString() string {
	return d.EffectiveStart.UTC().Format(effectiveStartLayout)
}

// ParseMonth parses a "YYYY-MM" month into the UTC midnight of its first
// day.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

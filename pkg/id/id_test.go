package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorMonotonic(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(42, func() time.Time { return fixed })

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = g.New()
	}
	assert.True(t, sort.StringsAreSorted(ids))

	seen := map[string]bool{}
	for _, s := range ids {
		assert.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(7, func() time.Time { return fixed })

	got, err := Time(g.New())
	require.NoError(t, err)
	assert.True(t, got.Equal(fixed))

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}

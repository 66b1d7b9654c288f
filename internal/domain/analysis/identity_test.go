package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableIDDeterministic(t *testing.T) {
	t.Parallel()

	a := StableID("assessment_1", "Demurrage rate unclear", "The demurrage clause omits the rate basis")
	b := StableID("assessment_1", "Demurrage rate unclear", "The demurrage clause omits the rate basis")
	require.Equal(t, a, b)

	// Any input change moves the id.
	assert.NotEqual(t, a, StableID("assessment_2", "Demurrage rate unclear", "The demurrage clause omits the rate basis"))
	assert.NotEqual(t, a, StableID("assessment_1", "Demurrage rate unclear!", "The demurrage clause omits the rate basis"))
	assert.NotEqual(t, a, StableID("assessment_1", "Demurrage rate unclear", ""))
}

func TestStableIDBase36(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		id      string
		title   string
		summary string
	}{
		{"ascii", "a1", "Laytime", "Counting starts on NOR"},
		{"empty parts", "", "", ""},
		{"unicode", "a1", "Свободное время", "停泊时间"},
		{"long", "a1", strings.Repeat("x", 500), strings.Repeat("y", 500)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			id := StableID(tc.id, tc.title, tc.summary)
			require.NotEmpty(t, id)
			for _, r := range id {
				assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z'),
					"unexpected rune %q in %q", r, id)
			}
		})
	}
}

func TestRedraftKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "redraft_abc123", RedraftKey("abc123"))
}

package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSeedsEmptyList(t *testing.T) {
	t.Parallel()

	merged, changed := Reconcile(nil)
	assert.True(t, changed)
	require.Len(t, merged, len(DemoAssessments))
	assert.Equal(t, DemoAssessments[0].ID, merged[0].ID)
}

func TestReconcileKeepsCompleteList(t *testing.T) {
	t.Parallel()

	stored := append([]Assessment{}, DemoAssessments...)
	stored = append(stored, Assessment{ID: "assessment_123", Name: "Mine", User: "ldc"})

	merged, changed := Reconcile(stored)
	assert.False(t, changed)
	assert.Equal(t, stored, merged)
}

func TestReconcileRefreshesStaleDemoSet(t *testing.T) {
	t.Parallel()

	// Stored list has only one of the demo entries, so the demo set is
	// prepended fresh; the user-created entry survives.
	stored := []Assessment{
		DemoAssessments[0],
		{ID: "assessment_456", Name: "User one", User: "ldc"},
	}

	merged, changed := Reconcile(stored)
	assert.True(t, changed)
	require.Len(t, merged, len(DemoAssessments)+1)
	for i, demo := range DemoAssessments {
		assert.Equal(t, demo.ID, merged[i].ID)
	}
	assert.Equal(t, "assessment_456", merged[len(merged)-1].ID)
}

func TestIsDemo(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDemo("photo_inspection_mv_crystalya"))
	assert.True(t, IsDemo("cleaning_report_mv_crystalya"))
	assert.False(t, IsDemo("assessment_123"))
}

package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAssessmentID(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateAssessmentID("assessment_1754049600000"))
	assert.NoError(t, ValidateAssessmentID("photo_inspection_mv_crystalya"))
	assert.Error(t, ValidateAssessmentID(""))
	assert.Error(t, ValidateAssessmentID("has spaces"))
	assert.Error(t, ValidateAssessmentID("../traversal"))
}

func TestValidateTriageStatus(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTriageStatus("negotiating"))
	assert.NoError(t, ValidateTriageStatus("Accepted"))
	assert.Error(t, ValidateTriageStatus("to-review"))
	assert.Error(t, ValidateTriageStatus(""))
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "ab", SanitizeString("a\x01\x02b"))
}

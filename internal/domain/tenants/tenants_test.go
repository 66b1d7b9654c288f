package tenants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	assert.True(t, Authenticate("ldc", "genevaairport"))
	assert.True(t, Authenticate("admin", "adminpass"))
	assert.False(t, Authenticate("ldc", "wrong"))
	assert.False(t, Authenticate("unknown", "genevaairport"))
	assert.False(t, Authenticate("", ""))
}

func TestUserTenant(t *testing.T) {
	t.Parallel()

	tenant, ok := UserTenant("ldc")
	assert.True(t, ok)
	assert.Equal(t, "ldc", tenant)

	_, ok = UserTenant("wanderer")
	assert.False(t, ok)
}

func TestCanAccess(t *testing.T) {
	t.Parallel()

	assert.True(t, CanAccess("ldc", "photo_inspection_mv_crystalya"))
	assert.True(t, CanAccess("admin", "cleaning_report_mv_crystalya"))
	assert.False(t, CanAccess("ldc", "assessment_123"))
	assert.False(t, CanAccess("ghost", "photo_inspection_mv_crystalya"))
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAdmin("admin"))
	assert.False(t, IsAdmin("ldc"))
}

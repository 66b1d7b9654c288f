package tenants

import "crypto/subtle"

// Fixed multi-tenant table. This is demo authentication, not a real
// identity provider; the tenant-visibility contract is the part that
// matters.

var validCredentials = map[string]string{
	"ldc":   "genevaairport",
	"admin": "adminpass",
}

var userTenants = map[string]string{
	"ldc":   "ldc",
	"admin": "admin",
}

var tenantAssessments = map[string][]string{
	"ldc": {
		"photo_inspection_mv_crystalya",
		"cleaning_report_mv_crystalya",
	},
	"admin": {
		"photo_inspection_mv_crystalya",
		"cleaning_report_mv_crystalya",
	},
}

const adminUser = "admin"

// Authenticate checks a username/password pair against the credential
// table using constant-time comparison.
func Authenticate(username, password string) bool {
	expected, ok := validCredentials[username]
	if !ok {
		// Compare against itself anyway to keep timing flat.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

// UserTenant returns the tenant for a username. Users without a mapping
// see all assessments.
func UserTenant(username string) (string, bool) {
	t, ok := userTenants[username]
	return t, ok
}

// TenantAssessments returns the tenant's allow-listed assessment ids.
func TenantAssessments(tenantID string) []string {
	return tenantAssessments[tenantID]
}

// CanAccess reports whether a tenant's allow-list contains the
// assessment. Ownership (the assessment's user field) is checked by the
// caller on top of this.
func CanAccess(tenantID, assessmentID string) bool {
	for _, id := range tenantAssessments[tenantID] {
		if id == assessmentID {
			return true
		}
	}
	return false
}

// IsAdmin gates the feedback management surface.
func IsAdmin(username string) bool {
	return username == adminUser
}

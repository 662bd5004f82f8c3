// Package policy derives authorization decisions from already-verified
// identity claims. Everything here is pure: no I/O, no failure modes beyond
// the boolean result.
package policy

import "strings"

// Role is a recognized group name granting elevated capability.
type Role string

const (
	// RoleDev marks members of the development team.
	RoleDev Role = "dev"
	// RoleAdmin grants full visibility and delete rights over all assets.
	RoleAdmin Role = "admin"
)

// HasRole reports whether the group set contains the given role.
func HasRole(groups []string, role Role) bool {
	for _, g := range groups {
		if g == string(role) {
			return true
		}
	}
	return false
}

// EmailDomainAllowed reports whether the email passes the domain allow-list.
// An empty allow-list permits every caller (the policy is opt-in). With a
// non-empty list, the email must end in "@<domain>" for one of the configured
// domains, compared case-insensitively; a missing email is denied.
func EmailDomainAllowed(email string, allowedDomains []string) bool {
	if len(allowedDomains) == 0 {
		return true
	}
	if email == "" {
		return false
	}
	lower := strings.ToLower(email)
	for _, d := range allowedDomains {
		if strings.HasSuffix(lower, "@"+strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// CanManage reports whether a caller may mutate an asset owned by owner:
// the owner themselves, or any admin.
func CanManage(subject string, groups []string, owner string) bool {
	return subject != "" && subject == owner || HasRole(groups, RoleAdmin)
}

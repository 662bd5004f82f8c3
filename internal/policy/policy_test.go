package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		role   Role
		want   bool
	}{
		{"admin present", []string{"dev", "admin"}, RoleAdmin, true},
		{"dev present", []string{"dev"}, RoleDev, true},
		{"role absent", []string{"dev"}, RoleAdmin, false},
		{"empty groups", []string{}, RoleAdmin, false},
		{"nil groups", nil, RoleDev, false},
		{"no partial match", []string{"administrator"}, RoleAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRole(tt.groups, tt.role))
		})
	}
}

func TestEmailDomainAllowed(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		domains []string
		want    bool
	}{
		{"empty allow-list permits anyone", "someone@anywhere.org", nil, true},
		{"empty allow-list permits missing email", "", nil, true},
		{"matching domain", "dev@example.com", []string{"example.com"}, true},
		{"case-insensitive email", "Dev@EXAMPLE.COM", []string{"example.com"}, true},
		{"case-insensitive domain", "dev@example.com", []string{"Example.COM"}, true},
		{"second domain matches", "dev@other.io", []string{"example.com", "other.io"}, true},
		{"non-matching domain", "dev@evil.com", []string{"example.com"}, false},
		{"missing email with non-empty list", "", []string{"example.com"}, false},
		{"subdomain does not match", "dev@sub.example.com", []string{"example.com"}, false},
		{"domain as substring does not match", "dev@notexample.com", []string{"example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmailDomainAllowed(tt.email, tt.domains))
		})
	}
}

func TestCanManage(t *testing.T) {
	assert.True(t, CanManage("user-1", nil, "user-1"))
	assert.True(t, CanManage("user-2", []string{"admin"}, "user-1"))
	assert.False(t, CanManage("user-2", []string{"dev"}, "user-1"))
	assert.False(t, CanManage("", nil, ""))
}

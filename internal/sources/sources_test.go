package sources

import "testing"

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role  Role
		valid bool
	}{
		{RolePrimary, true},
		{RoleSecondary, true},
		{Role("primary"), false},
		{Role(""), false},
		{Role("TERTIARY"), false},
	}

	for _, tc := range tests {
		if got := tc.role.Valid(); got != tc.valid {
			t.Errorf("Role(%q).Valid() = %v, want %v", tc.role, got, tc.valid)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "disclosure.pdf", "disclosure.pdf"},
		{"path traversal stripped", "../../etc/passwd", "passwd"},
		{"empty falls back", "", "source"},
		{"dot falls back", ".", "source"},
		{"spaces escaped", "witness statement.pdf", "witness%20statement.pdf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeFilename(tc.in); got != tc.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

package core

import "testing"

func TestParsePermission(t *testing.T) {
	tests := []struct {
		in   string
		want PermissionLevel
	}{
		{"admin", PermAdmin},
		{"ADMIN", PermAdmin},
		{"maintain", PermMaintain},
		{"push", PermPush},
		{"write", PermPush},
		{"triage", PermTriage},
		{"pull", PermPull},
		{"read", PermPull},
		{"", PermPull},
		{"owner", PermPull},
	}
	for _, tt := range tests {
		if got := ParsePermission(tt.in); got != tt.want {
			t.Errorf("ParsePermission(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPermissionOrdering(t *testing.T) {
	// the matcher relies on numeric comparison to pick the winner
	ordered := []PermissionLevel{PermPull, PermTriage, PermPush, PermMaintain, PermAdmin}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("%v should be below %v", ordered[i-1], ordered[i])
		}
	}
}

func TestPermissionStringRoundTrip(t *testing.T) {
	for _, p := range []PermissionLevel{PermPull, PermTriage, PermPush, PermMaintain, PermAdmin} {
		if got := ParsePermission(p.String()); got != p {
			t.Errorf("ParsePermission(%q) = %v, want %v", p.String(), got, p)
		}
	}
}

package ghapp

import (
	"reflect"
	"testing"

	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

func TestScopesFor(t *testing.T) {
	tests := []struct {
		name  string
		level core.PermissionLevel
		want  []string
	}{
		{
			name:  "Admin",
			level: core.PermAdmin,
			want:  []string{"repo", "admin:repo_hook", "delete_repo"},
		},
		{
			name:  "Maintain",
			level: core.PermMaintain,
			want:  []string{"repo", "admin:repo_hook"},
		},
		{
			name:  "Push",
			level: core.PermPush,
			want:  []string{"repo"},
		},
		{
			name:  "Triage",
			level: core.PermTriage,
			want:  []string{"repo:status", "repo_deployment"},
		},
		{
			name:  "Pull",
			level: core.PermPull,
			want:  []string{"repo:status", "public_repo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScopesFor(tt.level); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ScopesFor(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestScopesFor_UnknownFallsThroughToPull(t *testing.T) {
	// an unrecognized permission string parses to the floor
	level := core.ParsePermission("unknown-value")
	want := []string{"repo:status", "public_repo"}
	if got := ScopesFor(level); !reflect.DeepEqual(got, want) {
		t.Errorf("ScopesFor(unknown) = %v, want %v", got, want)
	}
}

func TestInstallationPermissionsFor(t *testing.T) {
	t.Run("Admin Gets Administration", func(t *testing.T) {
		perms := InstallationPermissionsFor(core.PermAdmin)
		if perms.GetAdministration() != "write" {
			t.Errorf("administration = %q, want write", perms.GetAdministration())
		}
		if perms.GetContents() != "write" {
			t.Errorf("contents = %q, want write", perms.GetContents())
		}
	})

	t.Run("Pull Is Read Only", func(t *testing.T) {
		perms := InstallationPermissionsFor(core.PermPull)
		if perms.GetContents() != "read" {
			t.Errorf("contents = %q, want read", perms.GetContents())
		}
		if perms.GetAdministration() != "" {
			t.Errorf("administration = %q, want unset", perms.GetAdministration())
		}
	})

	t.Run("Maintain Cannot Administer", func(t *testing.T) {
		perms := InstallationPermissionsFor(core.PermMaintain)
		if perms.GetAdministration() != "" {
			t.Errorf("administration = %q, want unset", perms.GetAdministration())
		}
	})
}

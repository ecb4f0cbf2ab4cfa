package access

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Munger/mikro-manager/pkg/util"
)

func testGroups() map[string]*Group {
	return map[string]*Group{
		"monitor": {
			Name:    "monitor",
			Modules: ModuleList{Modules: []string{"dns", "dhcp", "firewall"}},
			Access:  AccessReadOnly,
		},
		"dns-admin": {
			Name:    "dns-admin",
			Modules: ModuleList{Modules: []string{"dns"}},
			Access:  AccessReadWrite,
		},
		"importer": {
			Name:    "importer",
			Modules: ModuleList{Modules: []string{"dns"}},
			Access:  AccessWriteOnly,
		},
		"legacy": {
			Name:          "legacy",
			Modules:       ModuleList{Modules: []string{"dhcp"}},
			DefaultAccess: AccessReadWrite,
		},
		"unleveled": {
			Name:    "unleveled",
			Modules: ModuleList{Modules: []string{"firewall"}},
		},
		"superadmin": {
			Name:    "superadmin",
			Modules: ModuleList{Wildcard: true},
		},
	}
}

func userWith(refs ...GroupRef) map[string]*User {
	return map[string]*User{
		"alice": {
			Username:    "alice",
			Permissions: []PermissionEntry{{Groups: refs}},
		},
	}
}

func TestResolvePermissions(t *testing.T) {
	groups := testGroups()

	tests := []struct {
		name    string
		users   map[string]*User
		subject string
		want    []Permission
		absent  []Permission
	}{
		{
			name:    "read-write group",
			users:   userWith(GroupRef{Name: "dns-admin"}),
			subject: "alice",
			want:    []Permission{"dns:read", "dns:write"},
		},
		{
			name:    "read-only group covers several modules",
			users:   userWith(GroupRef{Name: "monitor"}),
			subject: "alice",
			want:    []Permission{"dns:read", "dhcp:read", "firewall:read"},
			absent:  []Permission{"dns:write", "dhcp:write"},
		},
		{
			name:    "write-only group",
			users:   userWith(GroupRef{Name: "importer"}),
			subject: "alice",
			want:    []Permission{"dns:write"},
			absent:  []Permission{"dns:read"},
		},
		{
			name:    "access override narrows group",
			users:   userWith(GroupRef{Name: "dns-admin", Access: AccessReadOnly}),
			subject: "alice",
			want:    []Permission{"dns:read"},
			absent:  []Permission{"dns:write"},
		},
		{
			name:    "default_access fallback",
			users:   userWith(GroupRef{Name: "legacy"}),
			subject: "alice",
			want:    []Permission{"dhcp:read", "dhcp:write"},
		},
		{
			name:    "missing level defaults to read-only",
			users:   userWith(GroupRef{Name: "unleveled"}),
			subject: "alice",
			want:    []Permission{"firewall:read"},
			absent:  []Permission{"firewall:write"},
		},
		{
			name:    "wildcard modules grant star",
			users:   userWith(GroupRef{Name: "superadmin"}),
			subject: "alice",
			want:    []Permission{"*"},
		},
		{
			name:    "unknown group ignored",
			users:   userWith(GroupRef{Name: "nonexistent"}, GroupRef{Name: "dns-admin"}),
			subject: "alice",
			want:    []Permission{"dns:read", "dns:write"},
		},
		{
			name:    "unknown user gets nothing",
			users:   userWith(GroupRef{Name: "dns-admin"}),
			subject: "mallory",
			absent:  []Permission{"dns:read", "dns:write", "*"},
		},
		{
			name:    "no users configured allows everything",
			users:   map[string]*User{},
			subject: "anyone",
			want:    []Permission{"*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perms := ResolvePermissions(tt.subject, tt.users, groups)
			for _, p := range tt.want {
				if !perms[p] {
					t.Errorf("missing permission %q in %v", p, perms)
				}
			}
			for _, p := range tt.absent {
				if perms[p] {
					t.Errorf("unexpected permission %q", p)
				}
			}
		})
	}
}

func TestChecker_Require(t *testing.T) {
	users := map[string]*User{
		"alice": {
			Username: "alice",
			Permissions: []PermissionEntry{
				{Groups: []GroupRef{{Name: "dns-admin"}, {Name: "monitor"}}},
			},
		},
	}
	checker := NewChecker(users, testGroups())

	t.Run("granted", func(t *testing.T) {
		checker.SetUser("alice")
		if err := checker.Require(WritePerm("dns")); err != nil {
			t.Errorf("alice should have dns:write: %v", err)
		}
		if err := checker.Require(ReadPerm("dhcp")); err != nil {
			t.Errorf("alice should have dhcp:read via monitor: %v", err)
		}
	})

	t.Run("denied", func(t *testing.T) {
		checker.SetUser("alice")
		err := checker.Require(WritePerm("dhcp"))
		if err == nil {
			t.Fatal("alice should not have dhcp:write")
		}
		if !errors.Is(err, util.ErrPermissionDenied) {
			t.Errorf("error should unwrap to ErrPermissionDenied: %v", err)
		}
		var aerr *AccessError
		if !errors.As(err, &aerr) {
			t.Fatalf("error is %T, want *AccessError", err)
		}
		if aerr.User != "alice" || aerr.Permission != "dhcp:write" {
			t.Errorf("AccessError = %+v", aerr)
		}
	})

	t.Run("unknown user denied", func(t *testing.T) {
		checker.SetUser("mallory")
		if err := checker.Require(ReadPerm("dns")); err == nil {
			t.Error("mallory should be denied")
		}
	})

	t.Run("no users configured allows", func(t *testing.T) {
		open := NewChecker(nil, nil)
		open.SetUser("anyone")
		if err := open.Require(WritePerm("dns")); err != nil {
			t.Errorf("empty users.d should disable access control: %v", err)
		}
	})
}

func TestChecker_Groups(t *testing.T) {
	users := map[string]*User{
		"alice": {
			Username: "alice",
			Permissions: []PermissionEntry{
				{Groups: []GroupRef{{Name: "monitor"}, {Name: "dns-admin"}}},
				{Groups: []GroupRef{{Name: "monitor"}}},
			},
		},
	}
	checker := NewChecker(users, testGroups())
	checker.SetUser("alice")

	groups := checker.Groups()
	if len(groups) != 2 {
		t.Fatalf("Groups() = %v, want 2 unique names", groups)
	}
	if groups[0] != "monitor" || groups[1] != "dns-admin" {
		t.Errorf("Groups() = %v", groups)
	}
}

func writeConfigFile(t *testing.T, dir, sub, name, content string) {
	t.Helper()
	d := filepath.Join(dir, sub)
	if err := os.MkdirAll(d, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadUsersAndGroups(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "users.d", "alice.yaml", `
user:
  username: alice
  permissions:
    - groups:
        - monitor
        - "dns-admin:read-only"
        - name: importer
          access: write-only
`)
	writeConfigFile(t, dir, "groups.d", "monitor.yaml", `
group:
  name: monitor
  modules: [dns, dhcp]
  access: read-only
`)
	writeConfigFile(t, dir, "groups.d", "dns-admin.yaml", `
group:
  name: dns-admin
  modules: dns
  access: read-write
`)
	writeConfigFile(t, dir, "groups.d", "super.yaml", `
group:
  name: super
  modules: "*"
`)
	writeConfigFile(t, dir, "groups.d", "importer.yaml", `
group:
  name: importer
  modules: dns
`)

	users := LoadUsers(dir)
	groups := LoadGroups(dir)

	if len(users) != 1 {
		t.Fatalf("LoadUsers: got %d users", len(users))
	}
	if len(groups) != 4 {
		t.Fatalf("LoadGroups: got %d groups", len(groups))
	}

	t.Run("group ref forms", func(t *testing.T) {
		refs := users["alice"].Permissions[0].Groups
		if len(refs) != 3 {
			t.Fatalf("got %d refs", len(refs))
		}
		if refs[0].Name != "monitor" || refs[0].Access != "" {
			t.Errorf("plain ref = %+v", refs[0])
		}
		if refs[1].Name != "dns-admin" || refs[1].Access != AccessReadOnly {
			t.Errorf("inline override ref = %+v", refs[1])
		}
		if refs[2].Name != "importer" || refs[2].Access != AccessWriteOnly {
			t.Errorf("mapping ref = %+v", refs[2])
		}
	})

	t.Run("scalar modules", func(t *testing.T) {
		g := groups["dns-admin"]
		if g.Modules.Wildcard || len(g.Modules.Modules) != 1 || g.Modules.Modules[0] != "dns" {
			t.Errorf("modules = %+v", g.Modules)
		}
	})

	t.Run("wildcard modules", func(t *testing.T) {
		if !groups["super"].Modules.Wildcard {
			t.Error("super group should have wildcard modules")
		}
	})

	t.Run("resolution over loaded files", func(t *testing.T) {
		perms := ResolvePermissions("alice", users, groups)
		for _, want := range []Permission{"dns:read", "dns:write", "dhcp:read"} {
			if !perms[want] {
				t.Errorf("missing %q in %v", want, perms)
			}
		}
		if perms["dhcp:write"] {
			t.Error("dhcp:write should not be granted")
		}
	})
}

func TestLoadUsers_MissingDir(t *testing.T) {
	users := LoadUsers(t.TempDir())
	if len(users) != 0 {
		t.Errorf("missing users.d should yield empty map, got %v", users)
	}
}

func TestPermissionModule(t *testing.T) {
	if got := Permission("dns:read").Module(); got != "dns" {
		t.Errorf("Module() = %q", got)
	}
	if got := Permission("*").Module(); got != "*" {
		t.Errorf("Module() = %q", got)
	}
}

// Package access provides file-based permission control for the
// mikro-manager tools.
//
// Users and groups are defined in YAML under the configuration
// directory:
//
//	users.d/alice.yaml:
//	  user:
//	    username: alice
//	    permissions:
//	      - groups: [monitor, "dns-admin:read-only"]
//
//	groups.d/dns-admin.yaml:
//	  group:
//	    name: dns-admin
//	    modules: [dns]
//	    access: read-write
//
// A group reference may carry an access-level override, either inline
// ("dns-admin:read-only") or as a mapping ({name: dns-admin, access:
// read-only}). A group with modules "*" grants everything.
package access

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Munger/mikro-manager/pkg/util"
)

// Access levels assignable to groups and overrides
const (
	AccessReadWrite = "read-write"
	AccessReadOnly  = "read-only"
	AccessWriteOnly = "write-only"
)

// Permission is a module-scoped permission string such as "dns:read".
// The global wildcard is "*"; a module wildcard is "dns:*".
type Permission string

// ReadPerm returns the read permission for a module.
func ReadPerm(module string) Permission {
	return Permission(module + ":read")
}

// WritePerm returns the write permission for a module.
func WritePerm(module string) Permission {
	return Permission(module + ":write")
}

// Module returns the module part of the permission.
func (p Permission) Module() string {
	if i := strings.IndexByte(string(p), ':'); i >= 0 {
		return string(p)[:i]
	}
	return string(p)
}

// GroupRef is a reference from a user to a group, optionally carrying
// an access-level override.
type GroupRef struct {
	Name   string `yaml:"name"`
	Access string `yaml:"access"`
}

// UnmarshalYAML accepts both the scalar forms ("monitor",
// "dns-admin:read-only") and the mapping form ({name:, access:}).
func (g *GroupRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if name, access, ok := strings.Cut(s, ":"); ok {
			g.Name, g.Access = name, access
		} else {
			g.Name = s
		}
		return nil
	}

	type plain GroupRef
	return value.Decode((*plain)(g))
}

// PermissionEntry is one element of a user's permissions list.
type PermissionEntry struct {
	Groups []GroupRef `yaml:"groups"`
}

// User is a user definition from users.d.
type User struct {
	Username    string            `yaml:"username"`
	Permissions []PermissionEntry `yaml:"permissions"`
}

// ModuleList is a group's module set: a list of module names, or the
// wildcard "*" covering every module.
type ModuleList struct {
	Wildcard bool
	Modules  []string
}

// UnmarshalYAML accepts "*", a single module name, or a sequence.
func (m *ModuleList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s == "*" {
			m.Wildcard = true
			return nil
		}
		m.Modules = []string{s}
		return nil
	}
	return value.Decode(&m.Modules)
}

// Group is a group definition from groups.d.
type Group struct {
	Name    string     `yaml:"name"`
	Modules ModuleList `yaml:"modules"`

	// Access is the group's access level; DefaultAccess is the older
	// spelling still accepted in existing config trees.
	Access        string `yaml:"access"`
	DefaultAccess string `yaml:"default_access"`
}

// accessLevel resolves the effective level for a group reference:
// reference override, group access, group default_access, read-only.
func (g *Group) accessLevel(override string) string {
	return util.CoalesceString(override, g.Access, g.DefaultAccess, AccessReadOnly)
}

type userFile struct {
	User *User `yaml:"user"`
}

type groupFile struct {
	Group *Group `yaml:"group"`
}

// LoadUsers reads user definitions from <dir>/users.d. A missing
// directory yields an empty map: with no users configured, access
// control is disabled.
func LoadUsers(dir string) map[string]*User {
	users := make(map[string]*User)
	for _, path := range yamlFiles(filepath.Join(dir, "users.d")) {
		var f userFile
		if err := unmarshalFile(path, &f); err != nil {
			util.Warnf("failed to load %s: %v", path, err)
			continue
		}
		if f.User == nil || f.User.Username == "" {
			continue
		}
		users[f.User.Username] = f.User
	}
	return users
}

// LoadGroups reads group definitions from <dir>/groups.d.
func LoadGroups(dir string) map[string]*Group {
	groups := make(map[string]*Group)
	for _, path := range yamlFiles(filepath.Join(dir, "groups.d")) {
		var f groupFile
		if err := unmarshalFile(path, &f); err != nil {
			util.Warnf("failed to load %s: %v", path, err)
			continue
		}
		if f.Group == nil || f.Group.Name == "" {
			continue
		}
		groups[f.Group.Name] = f.Group
	}
	return groups
}

func yamlFiles(dir string) []string {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil
	}
	sort.Strings(files)
	return files
}

func unmarshalFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// ResolvePermissions computes the permission set for a user from group
// memberships. With no users configured at all, every permission is
// granted; an unknown user gets none.
func ResolvePermissions(username string, users map[string]*User, groups map[string]*Group) map[Permission]bool {
	perms := make(map[Permission]bool)

	if len(users) == 0 {
		perms["*"] = true
		return perms
	}

	user, ok := users[username]
	if !ok {
		return perms
	}

	for _, entry := range user.Permissions {
		for _, ref := range entry.Groups {
			group, ok := groups[ref.Name]
			if !ok {
				continue
			}

			if group.Modules.Wildcard {
				perms["*"] = true
				continue
			}

			level := group.accessLevel(ref.Access)
			for _, module := range group.Modules.Modules {
				switch level {
				case AccessReadWrite:
					perms[ReadPerm(module)] = true
					perms[WritePerm(module)] = true
				case AccessReadOnly:
					perms[ReadPerm(module)] = true
				case AccessWriteOnly:
					perms[WritePerm(module)] = true
				}
			}
		}
	}
	return perms
}

// AccessError represents a permission denial
type AccessError struct {
	User       string
	Permission Permission
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("user '%s' does not have permission '%s'", e.User, e.Permission)
}

func (e *AccessError) Unwrap() error {
	return util.ErrPermissionDenied
}

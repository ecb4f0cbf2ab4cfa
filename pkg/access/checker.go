package access

import (
	"os"
	"os/user"
)

// Checker validates the invoking user's permissions against the
// users.d/groups.d definitions.
type Checker struct {
	users       map[string]*User
	groups      map[string]*Group
	currentUser string
	rootBypass  bool
}

// NewChecker creates a checker from loaded user and group maps. The
// current Unix user is the subject; root bypasses all checks.
func NewChecker(users map[string]*User, groups map[string]*Group) *Checker {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return &Checker{
		users:       users,
		groups:      groups,
		currentUser: username,
		rootBypass:  os.Geteuid() == 0,
	}
}

// LoadChecker loads users.d and groups.d from the configuration
// directory and returns a checker over them.
func LoadChecker(dir string) *Checker {
	return NewChecker(LoadUsers(dir), LoadGroups(dir))
}

// SetUser overrides the subject user (for testing, or root acting on
// another user's behalf).
func (c *Checker) SetUser(username string) {
	c.currentUser = username
	c.rootBypass = false
}

// CurrentUser returns the subject username.
func (c *Checker) CurrentUser() string {
	return c.currentUser
}

// Permissions returns the resolved permission set for the subject.
func (c *Checker) Permissions() map[Permission]bool {
	return ResolvePermissions(c.currentUser, c.users, c.groups)
}

// Groups returns the names of groups the subject is referenced by.
func (c *Checker) Groups() []string {
	user, ok := c.users[c.currentUser]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, entry := range user.Permissions {
		for _, ref := range entry.Groups {
			if seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	return names
}

// Allowed reports whether the subject has the given permission.
func (c *Checker) Allowed(required Permission) bool {
	if c.rootBypass {
		return true
	}

	// No users configured: access control is disabled
	if len(c.users) == 0 {
		return true
	}

	perms := c.Permissions()
	if perms["*"] {
		return true
	}
	if perms[required] {
		return true
	}
	// Module wildcard, e.g. "dns:*" covers "dns:read"
	return perms[Permission(required.Module()+":*")]
}

// Require returns an AccessError when the subject lacks the permission.
func (c *Checker) Require(required Permission) error {
	if c.Allowed(required) {
		return nil
	}
	return &AccessError{User: c.currentUser, Permission: required}
}

// Users returns the loaded user definitions.
func (c *Checker) Users() map[string]*User {
	return c.users
}

// GroupDefs returns the loaded group definitions.
func (c *Checker) GroupDefs() map[string]*Group {
	return c.groups
}

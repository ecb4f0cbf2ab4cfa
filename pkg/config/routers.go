// Package config loads router connection definitions from the
// mikro-manager configuration directory.
//
// Routers are defined one per file in <config>/routers.d/*.yaml:
//
//	router:
//	  name: core
//	  host: 192.168.88.1
//	  username: api-admin
//	  password: secret
//	  port: 8728
//	  use_ssl: false
//
// Files load in sorted filename order; the first router loaded is the
// default when no -r flag is given.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/Munger/mikro-manager/pkg/util"
)

// DefaultConfigDir is the system configuration directory
const DefaultConfigDir = "/etc/mikro-manager"

// Router holds connection settings for one RouterOS device
type Router struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
	UseSSL   bool   `yaml:"use_ssl"`
	Insecure bool   `yaml:"insecure"`
	SSHPort  int    `yaml:"ssh_port"`
}

// APIAddress returns the host:port of the RouterOS API endpoint.
func (r *Router) APIAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SSHAddress returns the host:port of the router's SSH endpoint.
func (r *Router) SSHAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.SSHPort)
}

type routerFile struct {
	Router *Router `yaml:"router"`
}

// Routers is an ordered set of router configurations
type Routers struct {
	order  []string
	byName map[string]*Router
}

// Names returns router names in load order.
func (rs *Routers) Names() []string {
	return rs.order
}

// Len returns the number of configured routers.
func (rs *Routers) Len() int {
	return len(rs.order)
}

// All returns routers in load order.
func (rs *Routers) All() []*Router {
	routers := make([]*Router, 0, len(rs.order))
	for _, name := range rs.order {
		routers = append(routers, rs.byName[name])
	}
	return routers
}

// Get returns the named router, or the default (first loaded) router
// when name is empty.
func (rs *Routers) Get(name string) (*Router, error) {
	if rs.Len() == 0 {
		return nil, fmt.Errorf("%w: no routers configured", util.ErrInvalidConfig)
	}
	if name == "" {
		return rs.byName[rs.order[0]], nil
	}
	r, ok := rs.byName[name]
	if !ok {
		return nil, fmt.Errorf("router '%s' not found. Available: %s",
			name, strings.Join(rs.order, ", "))
	}
	return r, nil
}

// Loader reads router definitions from a configuration directory
type Loader struct {
	Dir string

	// SkipOwnershipCheck disables the root-ownership requirement on
	// routers.d and its files. Enabled automatically when running as
	// root; tests set it explicitly.
	SkipOwnershipCheck bool
}

// NewLoader creates a loader for the given config directory
// (DefaultConfigDir when empty).
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = DefaultConfigDir
	}
	return &Loader{
		Dir:                dir,
		SkipOwnershipCheck: os.Geteuid() == 0,
	}
}

// Load reads all router definitions from <dir>/routers.d.
func (l *Loader) Load() (*Routers, error) {
	routerDir := filepath.Join(l.Dir, "routers.d")

	info, err := os.Stat(routerDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("router directory not found: %s (create router configs in %s)",
			routerDir, routerDir)
	}

	if !l.SkipOwnershipCheck {
		if uid, ok := fileOwner(info); ok && uid != 0 {
			return nil, fmt.Errorf("security error: %s must be owned by root (current owner UID: %d)",
				routerDir, uid)
		}
	}

	files, err := filepath.Glob(filepath.Join(routerDir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	rs := &Routers{byName: make(map[string]*Router)}
	for _, path := range files {
		if !l.SkipOwnershipCheck {
			fi, err := os.Stat(path)
			if err != nil {
				continue
			}
			if uid, ok := fileOwner(fi); ok && uid != 0 {
				util.Warnf("skipping %s: not owned by root (UID: %d)", path, uid)
				continue
			}
		}

		router, err := loadRouterFile(path)
		if err != nil {
			util.Warnf("failed to load %s: %v", path, err)
			continue
		}
		if router == nil {
			continue
		}
		if _, dup := rs.byName[router.Name]; dup {
			util.Warnf("duplicate router '%s' in %s, keeping earlier definition", router.Name, path)
			continue
		}
		rs.order = append(rs.order, router.Name)
		rs.byName[router.Name] = router
	}

	if rs.Len() == 0 {
		return nil, fmt.Errorf("no valid router configurations found in %s", routerDir)
	}
	return rs, nil
}

func loadRouterFile(path string) (*Router, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f routerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Router == nil || f.Router.Name == "" {
		return nil, nil
	}

	r := f.Router
	if err := validateRouter(r); err != nil {
		return nil, err
	}

	// Fill connection defaults
	if r.Port == 0 {
		if r.UseSSL {
			r.Port = 8729
		} else {
			r.Port = 8728
		}
	}
	if r.SSHPort == 0 {
		r.SSHPort = 22
	}
	return r, nil
}

func validateRouter(r *Router) error {
	v := &util.ValidationBuilder{}
	v.Add(r.Host != "", fmt.Sprintf("router '%s': host is required", r.Name))
	v.Add(r.Username != "", fmt.Sprintf("router '%s': username is required", r.Name))
	v.Add(r.Port >= 0 && r.Port <= 65535, fmt.Sprintf("router '%s': port out of range", r.Name))
	return v.Build()
}

// fileOwner returns the owning UID of a file. The second return is
// false on platforms without Stat_t.
func fileOwner(info os.FileInfo) (int, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return int(st.Uid), true
}

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/access"
	"github.com/Munger/mikro-manager/pkg/audit"
	"github.com/Munger/mikro-manager/pkg/config"
	"github.com/Munger/mikro-manager/pkg/routeros"
	"github.com/Munger/mikro-manager/pkg/settings"
	"github.com/Munger/mikro-manager/pkg/util"
)

// App carries the shared state of one CLI invocation: resolved
// settings, the router inventory, the permission checker, and the API
// connection. Each tool binary owns one App wired into its root
// command.
type App struct {
	Module string

	// Flag targets
	RouterName string
	ConfigDir  string
	Verbose    bool

	Settings *settings.Settings
	Checker  *access.Checker

	routers *config.Routers
	client  *routeros.Client
}

// NewApp creates the app state for a tool operating on one module
// ("dns", "dhcp", "firewall", or "manager").
func NewApp(module string) *App {
	return &App{Module: module}
}

// AddFlags registers the global flags every tool shares.
func (a *App) AddFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&a.RouterName, "router", "r", "", "Router name (default from settings)")
	root.PersistentFlags().StringVarP(&a.ConfigDir, "config", "C", "", "Configuration directory")
	root.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "Verbose output")
}

// Init resolves settings, logging, access control, and audit logging.
// Wire it as the root command's PersistentPreRunE.
func (a *App) Init(cmd *cobra.Command, args []string) error {
	if isSettingsOrHelp(cmd) {
		return nil
	}

	// Load user settings
	var err error
	a.Settings, err = settings.Load()
	if err != nil {
		util.Warnf("Could not load settings: %v", err)
		a.Settings = &settings.Settings{}
	}

	// Apply defaults from settings
	if a.RouterName == "" {
		a.RouterName = a.Settings.DefaultRouter
	}
	if a.ConfigDir == "" {
		a.ConfigDir = a.Settings.GetConfigDir()
	}

	// Quiet by default, verbose on -v
	if a.Verbose {
		util.SetLogLevel("debug")
	} else {
		util.SetLogLevel("warn")
	}

	a.Checker = access.LoadChecker(a.ConfigDir)

	auditLogger, err := audit.NewFileLogger(filepath.Join(a.ConfigDir, "audit.log"), audit.DefaultRotation)
	if err != nil {
		util.Warnf("Could not initialize audit logging: %v", err)
	} else {
		audit.SetDefaultLogger(auditLogger)
	}

	return nil
}

// Routers loads the router inventory on first use.
func (a *App) Routers() (*config.Routers, error) {
	if a.routers == nil {
		routers, err := config.NewLoader(a.ConfigDir).Load()
		if err != nil {
			return nil, err
		}
		a.routers = routers
	}
	return a.routers, nil
}

// Router resolves the selected router: the -r flag, the settings
// default, or the first configured router.
func (a *App) Router() (*config.Router, error) {
	routers, err := a.Routers()
	if err != nil {
		return nil, err
	}
	return routers.Get(a.RouterName)
}

// Connect opens the API connection to the selected router, prompting
// for a password when the router file omits one.
func (a *App) Connect() (routeros.Conn, error) {
	if a.client != nil {
		return a.client, nil
	}

	router, err := a.Router()
	if err != nil {
		return nil, err
	}
	if router.Password == "" {
		password, err := PromptPassword(fmt.Sprintf("Password for %s@%s", router.Username, router.Name))
		if err != nil {
			return nil, err
		}
		router.Password = password
	}

	client, err := routeros.Connect(router)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// Close tears down the API connection if one was opened.
func (a *App) Close() {
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
}

// RequireRead checks the module's read permission.
func (a *App) RequireRead() error {
	return a.Checker.Require(access.Permission(a.Module + ":read"))
}

// RequireWrite checks the module's write permission.
func (a *App) RequireWrite() error {
	return a.Checker.Require(access.Permission(a.Module + ":write"))
}

// Audit records a mutating operation's outcome. Failures to write the
// audit log are warnings, not errors.
func (a *App) Audit(operation, target string, opErr error) {
	routerName := a.RouterName
	if a.client != nil {
		routerName = a.client.Router().Name
	}
	event := audit.NewEvent(a.Checker.CurrentUser(), routerName, a.Module, operation).
		WithTarget(target).
		WithResult(opErr)
	if err := audit.Log(event); err != nil {
		util.WithOperation(operation).Warnf("could not write audit log: %v", err)
	}
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings,
// help, or version command, which run without router configuration.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings", "completion":
			return true
		}
	}
	return false
}

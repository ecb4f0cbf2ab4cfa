// Mikro-firewall - MikroTik Firewall Address List Tool
//
// Manages firewall address lists on MikroTik routers over the RouterOS
// API:
//   - Add and remove addresses, with optional timeouts
//   - List and search across all lists or one
//   - JSON/CSV export and import keyed on address
//   - Permission-based access control and audit logging
//
// Routers are defined in /etc/mikro-manager/routers.d (or the
// directory given with -C):
//
//	mikro-firewall list --list blocked
//	mikro-firewall add blocked 192.0.2.9 --timeout 1d
//	mikro-firewall delete blocked 192.0.2.9
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/firewall"
	"github.com/Munger/mikro-manager/pkg/version"
)

var app = cli.NewApp(firewall.Module)

func main() {
	defer app.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		app.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "mikro-firewall",
	Short:             "MikroTik Firewall Address List Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Mikro-firewall manages firewall address lists on MikroTik routers.

The target router comes from -r, the settings default, or the first
router configured in routers.d.

  mikro-firewall [-r <router>] <command> [args]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.Init(cmd, args)
	},
}

func init() {
	app.AddFlags(rootCmd)

	rootCmd.AddCommand(
		listCmd, searchCmd,
		addCmd, deleteCmd, enableCmd, disableCmd,
		exportCmd, importCmd, versionCmd,
	)
}

func manager(write bool) (*firewall.Manager, error) {
	if write {
		if err := app.RequireWrite(); err != nil {
			return nil, err
		}
	} else {
		if err := app.RequireRead(); err != nil {
			return nil, err
		}
	}
	conn, err := app.Connect()
	if err != nil {
		return nil, err
	}
	return firewall.NewManager(conn), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mikro-firewall %s\n", version.Info())
	},
}

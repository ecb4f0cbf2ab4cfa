// Mikro-dhcp - MikroTik DHCP Lease Tool
//
// Manages DHCP server leases on MikroTik routers over the RouterOS
// API:
//   - List leases, optionally per server instance
//   - Create static leases and convert dynamic ones
//   - JSON/CSV export and import keyed on MAC address
//   - Permission-based access control and audit logging
//
// Routers are defined in /etc/mikro-manager/routers.d (or the
// directory given with -C):
//
//	mikro-dhcp list --server lan
//	mikro-dhcp add 10.0.0.10 AA:BB:CC:00:00:01
//	mikro-dhcp make-static AA:BB:CC:00:00:01
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/dhcp"
	"github.com/Munger/mikro-manager/pkg/version"
)

var app = cli.NewApp(dhcp.Module)

func main() {
	defer app.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		app.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "mikro-dhcp",
	Short:             "MikroTik DHCP Lease Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Mikro-dhcp manages DHCP server leases on MikroTik routers.

The target router comes from -r, the settings default, or the first
router configured in routers.d.

  mikro-dhcp [-r <router>] <command> [args]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.Init(cmd, args)
	},
}

func init() {
	app.AddFlags(rootCmd)

	rootCmd.AddCommand(
		listCmd, searchCmd,
		addCmd, makeStaticCmd, deleteCmd, enableCmd, disableCmd,
		exportCmd, importCmd, versionCmd,
	)
}

func manager(write bool) (*dhcp.Manager, error) {
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
	return dhcp.NewManager(conn), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mikro-dhcp %s\n", version.Info())
	},
}

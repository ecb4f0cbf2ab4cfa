// Mikro-dns - MikroTik DNS Static Entry Tool
//
// Manages DNS static entries on MikroTik routers over the RouterOS
// API:
//   - CRUD on A, AAAA, CNAME, MX, TXT, NS, SRV, FWD, REGEXP and
//     NXDOMAIN records
//   - Consistency validation and live resolution checks
//   - JSON/CSV export and import
//   - Permission-based access control and audit logging
//
// Routers are defined in /etc/mikro-manager/routers.d (or the
// directory given with -C). The target router comes from -r, the
// settings default, or the first configured router:
//
//	mikro-dns list
//	mikro-dns -r branch add web.lan --address 10.0.0.2
//	mikro-dns search '*.lan'
//	mikro-dns export --format csv -o dns.csv
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/dns"
	"github.com/Munger/mikro-manager/pkg/version"
)

var app = cli.NewApp(dns.Module)

func main() {
	defer app.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		app.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "mikro-dns",
	Short:             "MikroTik DNS Static Entry Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Mikro-dns manages DNS static entries on MikroTik routers.

The target router comes from -r, the settings default, or the first
router configured in routers.d.

  mikro-dns [-r <router>] <command> [args]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.Init(cmd, args)
	},
}

func init() {
	app.AddFlags(rootCmd)

	rootCmd.AddCommand(
		listCmd, searchCmd, validateCmd, checkCmd,
		addCmd, updateCmd, deleteCmd, enableCmd, disableCmd,
		exportCmd, importCmd, versionCmd,
	)
}

// manager checks the permission for the operation class and opens the
// router connection.
func manager(write bool) (*dns.Manager, error) {
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
	return dns.NewManager(conn), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mikro-dns %s\n", version.Info())
	},
}

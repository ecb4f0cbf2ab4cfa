// Mikro-manager - MikroTik Fleet Administration Tool
//
// Administrative companion to mikro-dns, mikro-dhcp, and
// mikro-firewall:
//   - Inspect the router inventory (routers.d)
//   - Inspect access control (users.d, groups.d) and resolved
//     permissions
//   - Query the audit log
//   - Manage persistent settings (default router, config directory)
//   - Back up router configurations over SSH
//
// Examples:
//
//	mikro-manager routers list
//	mikro-manager access whoami
//	mikro-manager audit list --last 24h
//	mikro-manager settings set default_router gateway
//	mikro-manager backup --output /var/backups/mikrotik
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/version"
)

var app = cli.NewApp("manager")

func main() {
	defer app.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		app.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "mikro-manager",
	Short:             "MikroTik Fleet Administration Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Mikro-manager administers the shared configuration of the mikro-*
tools: the router inventory, access control, the audit log, settings,
and configuration backups.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.Init(cmd, args)
	},
}

func init() {
	app.AddFlags(rootCmd)

	rootCmd.AddCommand(
		routersCmd, accessCmd, auditCmd, settingsCmd, backupCmd, versionCmd,
	)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mikro-manager %s\n", version.Info())
	},
}

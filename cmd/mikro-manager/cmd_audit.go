package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/audit"
	"github.com/Munger/mikro-manager/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the audit log",
	Long: `View the audit log of router configuration changes.

Every mutating mikro-* command records who changed what on which
router, and whether it succeeded.

Examples:
  mikro-manager audit list -r gateway
  mikro-manager audit list --last 24h --failures
  mikro-manager audit list --user alice --module dns`,
}

var (
	auditUser     string
	auditModule   string
	auditLast     string
	auditLimit    int
	auditFailures bool
	auditJSON     bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.RequireRead(); err != nil {
			return err
		}

		// The global -r flag selects the router to filter on.
		filter := audit.Filter{
			Router:      app.RouterName,
			User:        auditUser,
			Module:      auditModule,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		// Parse --last duration
		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if auditJSON {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		table := cli.NewTable("TIMESTAMP", "USER", "ROUTER", "MODULE", "OPERATION", "TARGET", "STATUS")
		for _, event := range events {
			status := cli.Green("ok")
			if !event.Success {
				status = cli.Red("failed")
			}
			table.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Router,
				event.Module,
				event.Operation,
				event.Target,
				status,
			)
		}
		table.Flush()
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditModule, "module", "", "Filter by module, comma-separated (dns, dhcp, firewall)")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g. 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed operations")
	auditListCmd.Flags().BoolVar(&auditJSON, "json", false, "JSON output")

	auditCmd.AddCommand(auditListCmd)
}

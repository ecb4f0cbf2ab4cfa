package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/dns"
)

var jsonOutput bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List DNS static entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}
		entries, err := mgr.List()
		if err != nil {
			return err
		}
		return printEntries(entries)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search entries by name or address",
	Long: `Search entries whose name or address matches a wildcard pattern
(* matches any run of characters, ? a single character):

  mikro-dns search '*.lan'
  mikro-dns search '10.0.0.*'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}
		entries, err := mgr.Search(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No matching entries")
			return nil
		}
		return printEntries(entries)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the static table for duplicate names and address conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}
		report, err := mgr.Validate()
		if err != nil {
			return err
		}

		if report.Clean() {
			fmt.Println(cli.Green("No issues found"))
			return nil
		}

		for _, dup := range report.Duplicates {
			fmt.Printf("%s name %s defined %d times\n",
				cli.Red("duplicate:"), dup.Name, len(dup.Entries))
		}
		for _, conflict := range report.Conflicts {
			fmt.Printf("%s address %s claimed by %v\n",
				cli.Yellow("conflict:"), conflict.Address, conflict.Names)
		}
		return fmt.Errorf("%d duplicate(s), %d conflict(s)",
			len(report.Duplicates), len(report.Conflicts))
	},
}

var checkResolver string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve entries against the router and report mismatches",
	Long: `Resolve every enabled A and AAAA entry against the router's DNS
resolver and compare the answers with the static table. A different
resolver can be given with --resolver.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}

		resolver := checkResolver
		if resolver == "" {
			router, err := app.Router()
			if err != nil {
				return err
			}
			resolver = router.Host
		}

		results, err := mgr.Check(resolver)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No A/AAAA entries to check")
			return nil
		}

		table := cli.NewTable("NAME", "TYPE", "EXPECTED", "ACTUAL", "STATUS")
		failures := 0
		for _, res := range results {
			status := cli.Green(string(res.Status))
			if res.Status != dns.CheckOK {
				status = cli.Red(string(res.Status))
				failures++
			}
			table.Row(res.Name, res.Type, res.Expected, res.Actual, status)
		}
		table.Flush()

		if failures > 0 {
			return fmt.Errorf("%d of %d entries failed resolution", failures, len(results))
		}
		return nil
	},
}

func printEntries(entries []dns.Entry) error {
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No entries")
		return nil
	}

	table := cli.NewTable("NAME", "TYPE", "TARGET", "TTL", "COMMENT", "STATE")
	for _, entry := range entries {
		table.Row(entry.Name, entry.Type, entry.Target(), entry.TTL,
			entry.Comment, cli.State(entry.Disabled))
	}
	table.Flush()
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	checkCmd.Flags().StringVar(&checkResolver, "resolver", "", "Resolver address (default: the router)")
}

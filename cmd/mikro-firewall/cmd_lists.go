package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/firewall"
	"github.com/Munger/mikro-manager/pkg/resource"
)

var (
	jsonOutput bool
	filterList string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List address-list entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}
		entries, err := mgr.List(filterList)
		if err != nil {
			return err
		}
		return printEntries(entries)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search entries by list name or address",
	Long: `Search entries with a wildcard pattern over list name and address:

  mikro-firewall search '192.0.2.*'
  mikro-firewall search 'block*'`,
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

var addEntry firewall.ListEntry

var addCmd = &cobra.Command{
	Use:   "add <list> <address>",
	Short: "Add an address to a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		addEntry.List = args[0]
		addEntry.Address = args[1]
		id, err := mgr.Add(addEntry)
		app.Audit("add", addEntry.List+"/"+addEntry.Address, err)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s to %s (%s)\n", addEntry.Address, addEntry.List, id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <list> <address>",
	Short: "Remove an address from a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		err = mgr.Delete(args[0], args[1])
		app.Audit("delete", args[0]+"/"+args[1], err)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %s from %s\n", args[1], args[0])
		return nil
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <list> <address>",
	Short: "Enable an address-list entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		err = mgr.Enable(args[0], args[1])
		app.Audit("enable", args[0]+"/"+args[1], err)
		if err != nil {
			return err
		}
		fmt.Printf("Enabled %s in %s\n", args[1], args[0])
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <list> <address>",
	Short: "Disable an address-list entry without removing it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		err = mgr.Disable(args[0], args[1])
		app.Audit("disable", args[0]+"/"+args[1], err)
		if err != nil {
			return err
		}
		fmt.Printf("Disabled %s in %s\n", args[1], args[0])
		return nil
	},
}

var (
	transferFormat  string
	exportFile      string
	importFile      string
	importOverwrite bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export address-list entries as JSON or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}
		format, err := resource.ParseFormat(transferFormat)
		if err != nil {
			return err
		}
		data, err := mgr.Export(format)
		if err != nil {
			return err
		}
		return cli.WriteOutput(exportFile, data)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import address-list entries from JSON or CSV",
	Long: `Import entries from stdin or a file. Existing entries (matched by
address) are skipped unless --overwrite is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		format, err := resource.ParseFormat(transferFormat)
		if err != nil {
			return err
		}
		data, err := cli.ReadInput(importFile)
		if err != nil {
			return err
		}

		stats, err := mgr.Import(data, format, importOverwrite)
		app.Audit("import", importFile, err)
		if err != nil {
			return err
		}
		fmt.Println(stats.String())
		return nil
	},
}

func printEntries(entries []firewall.ListEntry) error {
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No entries")
		return nil
	}

	table := cli.NewTable("LIST", "ADDRESS", "TIMEOUT", "COMMENT", "STATE")
	for _, entry := range entries {
		state := cli.State(entry.Disabled)
		if entry.Dynamic {
			state = cli.Yellow("dynamic")
		}
		table.Row(entry.List, entry.Address, entry.Timeout, entry.Comment, state)
	}
	table.Flush()
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	listCmd.Flags().StringVar(&filterList, "list", "", "Filter by list name")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")

	addCmd.Flags().StringVar(&addEntry.Timeout, "timeout", "", "Entry timeout (e.g. 1d, 2h)")
	addCmd.Flags().StringVar(&addEntry.Comment, "comment", "", "Comment")
	addCmd.Flags().BoolVar(&addEntry.Disabled, "disabled", false, "Create the entry disabled")

	exportCmd.Flags().StringVar(&transferFormat, "format", "json", "Output format (json or csv)")
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Output file (default stdout)")
	importCmd.Flags().StringVar(&transferFormat, "format", "json", "Input format (json or csv)")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Input file (default stdin)")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Update entries that already exist")
}

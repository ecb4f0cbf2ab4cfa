package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/dhcp"
	"github.com/Munger/mikro-manager/pkg/resource"
)

var (
	jsonOutput bool
	listServer string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List DHCP leases",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}
		leases, err := mgr.List(listServer)
		if err != nil {
			return err
		}
		return printLeases(leases)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search leases by address, MAC, or host name",
	Long: `Search leases with a wildcard pattern over address, MAC address,
and host name:

  mikro-dhcp search '10.0.0.*'
  mikro-dhcp search 'printer*'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(false)
		if err != nil {
			return err
		}
		leases, err := mgr.Search(args[0])
		if err != nil {
			return err
		}
		if len(leases) == 0 {
			fmt.Println("No matching leases")
			return nil
		}
		return printLeases(leases)
	},
}

var addLease dhcp.Lease

var addCmd = &cobra.Command{
	Use:   "add <address> <mac-address>",
	Short: "Add a static DHCP lease",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		addLease.Address = args[0]
		addLease.MACAddress = args[1]
		id, err := mgr.Add(addLease)
		app.Audit("add", addLease.MACAddress, err)
		if err != nil {
			return err
		}
		fmt.Printf("Added lease %s -> %s (%s)\n", addLease.MACAddress, addLease.Address, id)
		return nil
	},
}

var makeStaticCmd = &cobra.Command{
	Use:   "make-static <mac-address>",
	Short: "Convert a dynamic lease to a static one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		err = mgr.MakeStatic(args[0])
		app.Audit("make-static", args[0], err)
		if err != nil {
			return err
		}
		fmt.Printf("Lease %s is now static\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <mac-address|address>",
	Short: "Delete a lease by MAC or IP address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		err = mgr.Delete(args[0])
		app.Audit("delete", args[0], err)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted lease %s\n", args[0])
		return nil
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <mac-address>",
	Short: "Enable a lease",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		err = mgr.Enable(args[0])
		app.Audit("enable", args[0], err)
		if err != nil {
			return err
		}
		fmt.Printf("Enabled lease %s\n", args[0])
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <mac-address>",
	Short: "Disable a lease without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}
		err = mgr.Disable(args[0])
		app.Audit("disable", args[0], err)
		if err != nil {
			return err
		}
		fmt.Printf("Disabled lease %s\n", args[0])
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
	Short: "Export leases as JSON or CSV",
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
	Short: "Import leases from JSON or CSV",
	Long: `Import leases from stdin or a file. Existing leases (matched by MAC
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

func printLeases(leases []dhcp.Lease) error {
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(leases)
	}
	if len(leases) == 0 {
		fmt.Println("No leases")
		return nil
	}

	table := cli.NewTable("ADDRESS", "MAC", "HOST", "SERVER", "STATUS", "STATE")
	for _, lease := range leases {
		status := lease.Status
		if lease.Dynamic {
			status = cli.Yellow("dynamic")
		}
		table.Row(lease.Address, lease.MACAddress, lease.HostName,
			lease.Server, status, cli.State(lease.Disabled))
	}
	table.Flush()
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	listCmd.Flags().StringVar(&listServer, "server", "", "Filter by DHCP server instance")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")

	addCmd.Flags().StringVar(&addLease.Server, "server", "", "DHCP server instance")
	addCmd.Flags().StringVar(&addLease.ClientID, "client-id", "", "Client identifier")
	addCmd.Flags().StringVar(&addLease.Comment, "comment", "", "Comment")
	addCmd.Flags().BoolVar(&addLease.Disabled, "disabled", false, "Create the lease disabled")

	exportCmd.Flags().StringVar(&transferFormat, "format", "json", "Output format (json or csv)")
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Output file (default stdout)")
	importCmd.Flags().StringVar(&transferFormat, "format", "json", "Input format (json or csv)")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Input file (default stdin)")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Update leases that already exist")
}

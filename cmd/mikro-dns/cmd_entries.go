package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/dns"
)

var addEntry dns.Entry

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a DNS static entry",
	Long: `Add a DNS static entry.

The required value flag depends on the record type:
  A/AAAA    --address
  CNAME     --cname
  MX        --mx-exchange [--mx-preference]
  TXT       --text
  NS        --ns
  SRV       --srv-target [--srv-priority --srv-weight --srv-port]
  FWD       --forward-to
  REGEXP    --regexp
  NXDOMAIN  (none)

Examples:
  mikro-dns add web.lan --address 10.0.0.2
  mikro-dns add alias.lan --type CNAME --cname web.lan
  mikro-dns add mail.lan --type MX --mx-exchange smtp.lan --mx-preference 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}

		addEntry.Name = args[0]
		addEntry.Type = strings.ToUpper(addEntry.Type)
		id, err := mgr.Add(addEntry)
		app.Audit("add", addEntry.Name, err)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", addEntry.Name, id)
		return nil
	},
}

var updateAttrs = map[string]*string{}

// updateFlag registers an optional update flag bound to a RouterOS
// attribute name.
func updateFlag(name, usage string) {
	value := new(string)
	updateAttrs[name] = value
	updateCmd.Flags().StringVar(value, name, "", usage)
}

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update fields of a DNS static entry",
	Long: `Update fields of an existing DNS static entry.

Only the given flags are changed:
  mikro-dns update web.lan --address 10.0.0.9
  mikro-dns update web.lan --ttl 4h --comment "moved"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager(true)
		if err != nil {
			return err
		}

		attrs := collectUpdateAttrs(cmd)
		if len(attrs) == 0 {
			return fmt.Errorf("nothing to update: pass at least one field flag")
		}

		err = mgr.Update(args[0], attrs)
		app.Audit("update", args[0], err)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	},
}

// collectUpdateAttrs gathers the update flags that were explicitly set.
// Record types are normalized to upper case, as in add.
func collectUpdateAttrs(cmd *cobra.Command) map[string]string {
	attrs := make(map[string]string)
	for name, value := range updateAttrs {
		if cmd.Flags().Changed(name) {
			attrs[name] = *value
		}
	}
	if v, ok := attrs["type"]; ok {
		attrs["type"] = strings.ToUpper(v)
	}
	return attrs
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a DNS static entry",
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
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a DNS static entry",
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
		fmt.Printf("Enabled %s\n", args[0])
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a DNS static entry without deleting it",
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
		fmt.Printf("Disabled %s\n", args[0])
		return nil
	},
}

func init() {
	flags := addCmd.Flags()
	flags.StringVarP(&addEntry.Type, "type", "t", dns.DefaultType,
		"Record type ("+strings.Join(dns.RecordTypes, ", ")+")")
	flags.StringVarP(&addEntry.Address, "address", "a", "", "IP address (A/AAAA)")
	flags.StringVar(&addEntry.CName, "cname", "", "Canonical name (CNAME)")
	flags.StringVar(&addEntry.MXPreference, "mx-preference", "", "MX preference")
	flags.StringVar(&addEntry.MXExchange, "mx-exchange", "", "MX exchange host")
	flags.StringVar(&addEntry.Text, "text", "", "Text content (TXT)")
	flags.StringVar(&addEntry.NS, "ns", "", "Name server (NS)")
	flags.StringVar(&addEntry.SrvPriority, "srv-priority", "", "SRV priority")
	flags.StringVar(&addEntry.SrvWeight, "srv-weight", "", "SRV weight")
	flags.StringVar(&addEntry.SrvPort, "srv-port", "", "SRV port")
	flags.StringVar(&addEntry.SrvTarget, "srv-target", "", "SRV target host")
	flags.StringVar(&addEntry.ForwardTo, "forward-to", "", "Forwarding resolver (FWD)")
	flags.StringVar(&addEntry.Regexp, "regexp", "", "Name pattern (REGEXP)")
	flags.StringVar(&addEntry.TTL, "ttl", "", "Time to live (default "+dns.DefaultTTL+")")
	flags.StringVar(&addEntry.Comment, "comment", "", "Comment")
	flags.BoolVar(&addEntry.Disabled, "disabled", false, "Create the entry disabled")

	updateFlag("type", "Record type ("+strings.Join(dns.RecordTypes, ", ")+")")
	updateFlag("address", "IP address (A/AAAA)")
	updateFlag("cname", "Canonical name (CNAME)")
	updateFlag("mx-preference", "MX preference")
	updateFlag("mx-exchange", "MX exchange host")
	updateFlag("text", "Text content (TXT)")
	updateFlag("ns", "Name server (NS)")
	updateFlag("srv-priority", "SRV priority")
	updateFlag("srv-weight", "SRV weight")
	updateFlag("srv-port", "SRV port")
	updateFlag("srv-target", "SRV target host")
	updateFlag("forward-to", "Forwarding resolver (FWD)")
	updateFlag("regexp", "Name pattern (REGEXP)")
	updateFlag("ttl", "Time to live")
	updateFlag("comment", "Comment")
}

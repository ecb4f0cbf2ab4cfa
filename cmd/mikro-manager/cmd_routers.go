package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
)

var routersCmd = &cobra.Command{
	Use:   "routers",
	Short: "Inspect the router inventory",
	Long: `Inspect the routers defined in routers.d.

Passwords are never printed.`,
}

var routersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured routers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.RequireRead(); err != nil {
			return err
		}
		routers, err := app.Routers()
		if err != nil {
			return err
		}

		defaultName := app.Settings.DefaultRouter
		table := cli.NewTable("NAME", "HOST", "PORT", "USER", "SSL", "DEFAULT")
		for _, router := range routers.All() {
			ssl := ""
			if router.UseSSL {
				ssl = "yes"
			}
			isDefault := ""
			if router.Name == defaultName {
				isDefault = cli.Green("*")
			}
			table.Row(router.Name, router.Host, fmt.Sprint(router.Port),
				router.Username, ssl, isDefault)
		}
		table.Flush()
		return nil
	},
}

var routersShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one router's connection details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.RequireRead(); err != nil {
			return err
		}
		routers, err := app.Routers()
		if err != nil {
			return err
		}
		router, err := routers.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", cli.Bold(router.Name))
		field := func(name, value string) {
			fmt.Printf("  %s %s\n", cli.DotPad(name, 12), value)
		}
		field("host", router.Host)
		field("api", router.APIAddress())
		field("ssh", router.SSHAddress())
		field("username", router.Username)
		if router.UseSSL {
			ssl := "enabled"
			if router.Insecure {
				ssl += " (certificate verification disabled)"
			}
			field("ssl", ssl)
		}
		if router.Password == "" {
			field("password", cli.Dim("(prompted at connect time)"))
		} else {
			field("password", cli.Dim("(set)"))
		}
		return nil
	},
}

func init() {
	routersCmd.AddCommand(routersListCmd, routersShowCmd)
}

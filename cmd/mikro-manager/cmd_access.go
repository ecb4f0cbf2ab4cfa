package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/access"
	"github.com/Munger/mikro-manager/pkg/cli"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Inspect access control",
	Long: `Inspect the users.d/groups.d access-control configuration and the
permissions it resolves to.

When no users are defined, access control is disabled and every
operation is allowed.`,
}

var accessUser string

var accessWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the invoking user's groups and permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := app.Checker
		if accessUser != "" {
			checker.SetUser(accessUser)
		}

		fmt.Printf("user: %s\n", cli.Bold(checker.CurrentUser()))

		if len(checker.Users()) == 0 {
			fmt.Println(cli.Yellow("no users defined: access control is disabled"))
			return nil
		}

		if groups := checker.Groups(); len(groups) > 0 {
			fmt.Printf("groups: %s\n", strings.Join(groups, ", "))
		}

		perms := checker.Permissions()
		if len(perms) == 0 {
			fmt.Println(cli.Red("no permissions"))
			return nil
		}
		names := make([]string, 0, len(perms))
		for perm := range perms {
			names = append(names, string(perm))
		}
		sort.Strings(names)
		fmt.Println("permissions:")
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

var accessCheckCmd = &cobra.Command{
	Use:   "check <permission>",
	Short: "Test whether a permission is granted",
	Long: `Test whether the invoking user (or --user) holds a permission such
as dns:read or firewall:write:

  mikro-manager access check dns:write
  mikro-manager access check --user alice dhcp:read`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := app.Checker
		if accessUser != "" {
			checker.SetUser(accessUser)
		}

		perm := access.Permission(args[0])
		if checker.Allowed(perm) {
			fmt.Printf("%s has %s\n", checker.CurrentUser(), cli.Green(string(perm)))
			return nil
		}
		return fmt.Errorf("%s does not have %s", checker.CurrentUser(), perm)
	},
}

var accessUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List defined users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users := app.Checker.Users()
		if len(users) == 0 {
			fmt.Println("No users defined (access control disabled)")
			return nil
		}

		names := make([]string, 0, len(users))
		for name := range users {
			names = append(names, name)
		}
		sort.Strings(names)

		table := cli.NewTable("USER", "PERMISSIONS")
		for _, name := range names {
			perms := access.ResolvePermissions(name, users, app.Checker.GroupDefs())
			permNames := make([]string, 0, len(perms))
			for perm := range perms {
				permNames = append(permNames, string(perm))
			}
			sort.Strings(permNames)
			table.Row(name, strings.Join(permNames, ", "))
		}
		table.Flush()
		return nil
	},
}

var accessGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List defined groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups := app.Checker.GroupDefs()
		if len(groups) == 0 {
			fmt.Println("No groups defined")
			return nil
		}

		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)

		table := cli.NewTable("GROUP", "ACCESS", "MODULES")
		for _, name := range names {
			group := groups[name]
			accessLevel := group.Access
			if accessLevel == "" {
				accessLevel = group.DefaultAccess
			}
			if accessLevel == "" {
				accessLevel = access.AccessReadOnly
			}
			modules := "*"
			if !group.Modules.Wildcard {
				modules = strings.Join(group.Modules.Modules, ", ")
			}
			table.Row(name, accessLevel, modules)
		}
		table.Flush()
		return nil
	},
}

func init() {
	accessWhoamiCmd.Flags().StringVar(&accessUser, "user", "", "Resolve for another user")
	accessCheckCmd.Flags().StringVar(&accessUser, "user", "", "Check for another user")

	accessCmd.AddCommand(accessWhoamiCmd, accessCheckCmd, accessUsersCmd, accessGroupsCmd)
}

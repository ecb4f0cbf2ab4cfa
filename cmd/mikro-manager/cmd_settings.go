package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.mikro-manager/settings.json.

Settings provide defaults for the global flags of every mikro-* tool:
  - default_router: Used when -r is not specified
  - config_dir:     Used when -C is not specified

Examples:
  mikro-manager settings show
  mikro-manager settings set default_router gateway
  mikro-manager settings set config_dir /etc/mikro-manager
  mikro-manager settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")
		for _, key := range settings.Keys {
			value, _ := s.Get(key)
			if value == "" {
				value = "(not set)"
			}
			t.Row(key, value)
		}
		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s set to: %s\n", args[0], args[1])
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		value, err := s.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

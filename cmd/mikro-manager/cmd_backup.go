package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/backup"
	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/config"
)

var backupOutput string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up router configurations over SSH",
	Long: `Run /export on each router over SSH and save the output as a
timestamped .rsc file. With -r only that router is backed up;
otherwise every configured router is.

  mikro-manager backup --output /var/backups/mikrotik
  mikro-manager backup -r gateway`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.RequireWrite(); err != nil {
			return err
		}

		var targets []*config.Router
		if app.RouterName != "" {
			router, err := app.Router()
			if err != nil {
				return err
			}
			targets = []*config.Router{router}
		} else {
			routers, err := app.Routers()
			if err != nil {
				return err
			}
			targets = routers.All()
		}

		for _, router := range targets {
			if router.Password == "" {
				password, err := cli.PromptPassword(
					fmt.Sprintf("Password for %s@%s", router.Username, router.Name))
				if err != nil {
					return err
				}
				router.Password = password
			}
		}

		results, err := backup.NewRunner(backupOutput).Run(targets)
		if err != nil {
			return err
		}

		failures := 0
		for _, res := range results {
			app.Audit("backup", res.Router, res.Err)
			if res.Err != nil {
				failures++
				fmt.Printf("%s %s: %v\n", cli.Red("failed:"), res.Router, res.Err)
				continue
			}
			fmt.Printf("%s %s -> %s\n", cli.Green("backed up:"), res.Router, res.Path)
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d backups failed", failures, len(results))
		}
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", ".", "Output directory for .rsc files")
}

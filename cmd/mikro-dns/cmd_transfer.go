package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Munger/mikro-manager/pkg/cli"
	"github.com/Munger/mikro-manager/pkg/resource"
)

var (
	transferFormat  string
	exportFile      string
	importFile      string
	importOverwrite bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export DNS static entries as JSON or CSV",
	Long: `Export the static table to stdout or a file:

  mikro-dns export > dns.json
  mikro-dns export --format csv -o dns.csv`,
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
	Short: "Import DNS static entries from JSON or CSV",
	Long: `Import entries from stdin or a file. Existing entries (matched by
name) are skipped unless --overwrite is given:

  mikro-dns import -f dns.json
  mikro-dns import --format csv --overwrite < dns.csv`,
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

func init() {
	exportCmd.Flags().StringVar(&transferFormat, "format", "json", "Output format (json or csv)")
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Output file (default stdout)")

	importCmd.Flags().StringVar(&transferFormat, "format", "json", "Input format (json or csv)")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Input file (default stdin)")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Update entries that already exist")
}

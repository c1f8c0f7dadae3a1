package cli

import (
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table as JSON Lines into dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				counts, err := a.backend.ExportJSONL(args[0])
				return respond(cmd.OutOrStdout(), counts, err)
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load JSON Lines files written by export",
		Long: "Insert the records of every <table>.jsonl found in dir. Rows whose id\n" +
			"already exists are skipped; rows left pointing at missing parents are\n" +
			"removed and counted as orphans.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				results, err := a.backend.ImportJSONL(args[0])
				return respond(cmd.OutOrStdout(), results, err)
			})
		},
	}
}

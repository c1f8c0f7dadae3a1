package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema migrations and print the report",
		Long: "Open the database, which runs every migration script in order, and\n" +
			"print the status of each script. Already-applied scripts are reported\n" +
			"as such; a failed script does not stop the later ones.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return respond(cmd.OutOrStdout(), a.backend.MigrationReport(), nil)
			})
		},
	}
}

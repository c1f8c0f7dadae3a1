package cli

import (
	"github.com/spf13/cobra"
)

type seedResult struct {
	Seeded bool `json:"seeded"`
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo sellers, properties, buyers, and deals",
		Long:  "Insert the demo data set. Nothing is written when the database already\nholds any seller, buyer, or property.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				seeded, err := a.backend.SeedDemo()
				return respond(cmd.OutOrStdout(), seedResult{Seeded: seeded}, err)
			})
		},
	}
}

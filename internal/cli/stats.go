package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// daysPayload builds the {"days": n} payload of the stats operations.
func daysPayload(days int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"days":%d}`, days))
}

func newStatsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return printResponse(cmd.OutOrStdout(), a.dispatcher.Call("stats:getDashboard", daysPayload(days)))
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "idle days before a deal counts as stale (default: stale_days)")
	return cmd
}

func newStaleCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "List open deals with no recent update",
		Long: "List the non-terminal deals whose last update is older than --days,\n" +
			"oldest first, with the buyer and property names.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return printResponse(cmd.OutOrStdout(), a.dispatcher.Call("stats:getStaleDealDetails", daysPayload(days)))
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "idle days before a deal counts as stale (default: stale_days)")
	return cmd
}

func newIncarichiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "incarichi",
		Aliases: []string{"expirations"},
		Short:   "List the brokerage mandates by expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return printResponse(cmd.OutOrStdout(), a.dispatcher.Call("stats:getIncaricoExpirations", nil))
			})
		},
	}
}

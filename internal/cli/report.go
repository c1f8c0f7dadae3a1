package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hotelcrm/internal/report"
)

type reportResult struct {
	Path        string `json:"path"`
	StaleDeals  int    `json:"staleDeals"`
	Expirations int    `json:"expirations"`
	Properties  int    `json:"properties"`
	Buyers      int    `json:"buyers"`
}

func newReportCmd() *cobra.Command {
	var (
		output string
		days   int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write an Excel workbook with the dashboard and listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if days < 1 {
					days = a.config.StaleDays
				}
				now := a.backend.Now()
				snap, err := report.Collect(a.stats, a.backend, days, now)
				if err != nil {
					return respond(cmd.OutOrStdout(), nil, err)
				}
				path := output
				if path == "" {
					path = fmt.Sprintf("hotelcrm-report-%s.xlsx", now.Format("2006-01-02"))
				}
				if err := writeReport(path, snap); err != nil {
					return sysError{err}
				}
				return respond(cmd.OutOrStdout(), reportResult{
					Path:        path,
					StaleDeals:  len(snap.StaleDeals),
					Expirations: len(snap.Expirations),
					Properties:  len(snap.Properties),
					Buyers:      len(snap.Buyers),
				}, nil)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "workbook path (default: hotelcrm-report-<date>.xlsx)")
	cmd.Flags().IntVar(&days, "days", 0, "idle days before a deal counts as stale (default: stale_days)")
	return cmd
}

func writeReport(path string, snap report.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

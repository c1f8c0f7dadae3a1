package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

type attachResult struct {
	Attachment *types.PropertyAttachment `json:"attachment"`
	Path       string                    `json:"path"`
	Size       string                    `json:"size"`
}

func newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <property-id> <file>",
		Short: "Store a PDF or spreadsheet for a property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				att, err := a.attachments.SaveFile(args[0], args[1])
				if err != nil {
					return respond(cmd.OutOrStdout(), nil, err)
				}
				path, err := a.attachments.Path(att.ID)
				if err != nil {
					return respond(cmd.OutOrStdout(), nil, err)
				}
				return respond(cmd.OutOrStdout(), attachResult{
					Attachment: att,
					Path:       path,
					Size:       humanize.IBytes(uint64(att.FileSize)),
				}, nil)
			})
		},
	}
}

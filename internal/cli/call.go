package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newCallCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "call <operation> [payload|-]",
		Short: "Run a named operation such as buyers:create",
		Long: "Run one dispatch operation and print its envelope. The payload is a\n" +
			"JSON document given as the second argument, or read from stdin when\n" +
			"the argument is \"-\". Use --list to print the operation names.",
		Example: `  hotelcrm call buyers:getAll '{"zone":"Roma"}'
  hotelcrm call deals:updateStatus '{"id":"...","status":"in_corso"}'
  echo '"0190..."' | hotelcrm call sellers:getById -`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return nil
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if list {
					return printJSON(cmd.OutOrStdout(), a.dispatcher.Operations())
				}
				payload, err := readPayload(cmd.InOrStdin(), args[1:])
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), a.dispatcher.Call(args[0], payload))
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list the available operations")
	return cmd
}

// readPayload returns the raw JSON payload from the argument or stdin.
func readPayload(stdin io.Reader, args []string) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}
	raw := args[0]
	if raw == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

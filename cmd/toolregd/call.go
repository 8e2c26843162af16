package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCallCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke one tool and print the result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			var raw []byte
			if len(args) == 2 {
				raw = []byte(args[1])
			}
			res := a.dispatcher.InvokeJSON(cmd.Context(), args[0], raw)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if res.Err != nil {
				if err := enc.Encode(map[string]any{"error": res.Err}); err != nil {
					return err
				}
				return fmt.Errorf("%s: %s", res.Err.Kind, res.Err.Message)
			}
			return enc.Encode(map[string]any{"result": res.Value})
		},
	}
}

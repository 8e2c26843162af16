package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skosovsky/toolreg"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var (
		tags   []string
		where  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the registered tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			var sel *toolreg.Selector
			if where != "" {
				if sel, err = toolreg.CompileSelector(where); err != nil {
					return err
				}
			}
			infos := []toolreg.ToolInfo{}
			for d := range a.dispatcher.Catalog().Select(sel, tags...) {
				infos = append(infos, d.Info())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTAGS\tPARAMS\tDESCRIPTION")
			for _, info := range infos {
				props, _ := info.InputSchema["properties"].(map[string]any)
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", info.Name, strings.Join(info.Tags, ","), len(props), firstLine(info.Description))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "only tools with any of these tags")
	cmd.Flags().StringVar(&where, "where", "", "CEL filter over name, description, tags and params")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full descriptors as JSON")
	return cmd
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

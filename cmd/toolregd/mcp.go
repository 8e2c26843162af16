package main

import (
	"github.com/spf13/cobra"

	"github.com/skosovsky/toolreg/internal/demo"
	"github.com/skosovsky/toolreg/mcpadapter"
)

func newMCPCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tool catalog over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol
			a, err := setup(cmd, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			s, err := mcpadapter.NewServer(a.dispatcher, "toolregd", demo.Version, a.logger)
			if err != nil {
				return err
			}
			return mcpadapter.ServeStdio(s)
		},
	}
}

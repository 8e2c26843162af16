package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skosovsky/toolreg/httpapi"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool catalog over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			srv := httpapi.New(a.dispatcher,
				httpapi.WithLogger(a.logger),
				httpapi.WithAllowedOrigins(a.cfg.CORSOrigins()...),
			)
			return srv.Serve(ctx, a.cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides TOOLREG_ADDR)")
	return cmd
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yokitheyo/unpacker/internal/config"
	"github.com/yokitheyo/unpacker/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validate and unpack JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sc := a.cfg.Server
			srv := server.New(server.Options{
				Addr:           sc.Addr,
				MaxConns:       sc.MaxConns,
				ReadTimeout:    sc.ReadTimeout,
				MaxBodyBytes:   sc.MaxBodyBytes,
				MaxUnpackedLen: sc.MaxUnpackedLen,
			}, a.logger)
			return srv.ListenAndServe(ctx)
		},
	}

	defaults := config.DefaultConfig().Server
	cmd.Flags().String("addr", defaults.Addr, "listen address")
	cmd.Flags().Int("max-conns", defaults.MaxConns, "maximum concurrent connections (0 = unlimited)")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "request read timeout")
	cmd.Flags().Int64("max-body-bytes", defaults.MaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().Uint64("max-unpacked", defaults.MaxUnpackedLen, "maximum unpacked length served (0 = unlimited)")
	return cmd
}

package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yokitheyo/unpacker/batch"
	"github.com/yokitheyo/unpacker/internal/config"
)

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Unpack every line of FILE (or stdin) concurrently, keeping input order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) > 0 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			sum, err := batch.Run(cmd.Context(), r, cmd.OutOrStdout(), batch.Options{
				Workers: a.cfg.Batch.Workers,
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info("batch complete", "total", sum.Total, "valid", sum.Valid, "invalid", sum.Invalid)
			return nil
		},
	}

	cmd.Flags().Int("workers", config.DefaultConfig().Batch.Workers, "number of concurrent workers (0 = one per CPU)")
	return cmd
}

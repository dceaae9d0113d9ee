package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yokitheyo/unpacker/internal/config"
)

type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "unpacker",
		Short: "Validate and unpack text such as a3[bc]4[d]e",
		Long: `unpacker expands packed text made of letters and DIGITS[BODY] groups,
where BODY may contain further groups: a3[bc]4[d]e unpacks to abcbcbcdddde.

Run without a subcommand to start the interactive prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newREPLCmd(),
		newExpandCmd(),
		newValidateCmd(),
		newBatchCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: a.cfgFile,
		Flags:          cmd.Flags(),
	})
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	a.cfg = cfg
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix:          "unpacker",
		ReportTimestamp: true,
		Level:           level,
	})
	a.logger.Debug("configuration loaded", "config", a.cfgFile)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Temutjin2k/crowdguard/config"
	"github.com/Temutjin2k/crowdguard/internal/app"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

type rootOptions struct {
	mode       string
	configPath string
	logLevel   string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "crowdguard",
		Short:         "Crowd safety dashboard data service",
		Long:          config.HelpMessage,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "service to run: monitor-service or simulation-service")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "overrides LOG_LEVEL: DEBUG, INFO, WARN or ERROR")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "do not print the configuration table on start")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config-path", "config.yaml", "path to the config yaml file")

	cmd.AddCommand(newSimulateCmd(), newTokenCmd(opts))

	return cmd
}

func runService(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	log := logger.InitLogger("crowdguard", logger.LevelInfo)

	cfg, err := config.NewConfig(opts.configPath, types.ServiceMode(opts.mode))
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		return err
	}

	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if !logger.ValidateLogLevel(cfg.LogLevel) {
		err = fmt.Errorf("invalid log level %q", cfg.LogLevel)
		log.Error(ctx, "failed to configure application", err)
		return err
	}

	if !opts.quiet {
		config.PrintConfig(cmd.OutOrStdout(), cfg)
	}

	log = logger.InitLogger(cfg.Mode.String(), cfg.LogLevel)

	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		return err
	}

	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		return err
	}
	return nil
}

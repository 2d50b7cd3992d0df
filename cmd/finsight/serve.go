package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finsight-io/finsight/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled background analysis",
		Long: `Expose the analysis engine over HTTP and periodically re-analyze all
known accounts on a cron schedule.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("schedule", "0 3 * * *", "cron schedule for background analysis (empty disables it)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.analyze_schedule", cmd.Flags().Lookup("schedule"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, err := newStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	eng, err := newEngine(store)
	if err != nil {
		return err
	}

	config := server.DefaultConfig()
	config.Addr = viper.GetString("server.addr")
	config.AnalyzeSchedule = viper.GetString("server.analyze_schedule")

	srv, err := server.New(eng, store, config)
	if err != nil {
		return err
	}

	return srv.Start()
}

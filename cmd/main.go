package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/idea2sns-backend/internal/app"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "idea2sns",
		Short:         "idea2sns - social post generation backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(planCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg app.Config) (*logger.Logger, error) {
	mode := cfg.Env
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

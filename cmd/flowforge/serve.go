package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the campaign API server",
	Long:  `Start the flowforge HTTP API server over the configured campaign store.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.API.Version = version

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	return a.Run(context.Background())
}

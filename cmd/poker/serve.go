package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gurudaths93/planning-poker-backend/internal/config"
	"github.com/gurudaths93/planning-poker-backend/internal/engine"
	"github.com/gurudaths93/planning-poker-backend/internal/platform/web"
)

var (
	flagListen string
	flagConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planning poker server",
	Long: `Start the websocket server that hosts estimation sessions.

Configuration comes from a YAML file (./poker.yaml by default) with
flag overrides. Sessions live in memory with a fixed 24 hour lifetime
and are reaped in the background once expired.

Examples:
  poker serve                      # Listen on :3000
  poker serve --listen :8080       # Listen on port 8080
  poker serve --config ./my.yaml   # Use a specific config file`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (host:port), overrides config")
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagListen != "" {
		cfg.Server.Listen = flagListen
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "poker",
	})

	conns := engine.NewConnRegistry()
	eng := engine.New(engine.Config{
		SessionTTL:             time.Duration(cfg.Session.TTLHours) * time.Hour,
		SweepInterval:          time.Duration(cfg.Session.SweepIntervalMinutes) * time.Minute,
		QueueSize:              cfg.Engine.QueueSize,
		RejectVotesAfterReveal: cfg.Session.RejectVotesAfterReveal,
	}, conns, logger)

	server := web.New(cfg, eng, conns, logger)

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

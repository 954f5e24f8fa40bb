package main

import (
	"flag"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	ShutdownTimeout time.Duration
	ShowVersion     bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SMARTHOME_CONFIG", "configs/configstatusd.yaml"),
		"Path to configuration file (env: SMARTHOME_CONFIG)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		10*time.Second,
		"Maximum time to wait for background workers on shutdown")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

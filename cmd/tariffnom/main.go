package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tariffnom/tariffnom/internal/cli"
	"github.com/tariffnom/tariffnom/internal/core"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

func main() {
	// Load .env file for local runs
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg cli.Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	if err := cli.Execute(cfg); err != nil {
		logx.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

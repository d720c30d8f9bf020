package main

import (
	"flag"
	"fmt"
	"os"

	"streetnet/internal/config"
	"streetnet/internal/db"
	"streetnet/internal/logger"
	"streetnet/internal/pipeline"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "JSON config file merged over defaults")
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "run"
	}

	switch cmd {
	case "run":
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
			os.Exit(1)
		}
		defer database.Close()

		if err := pipeline.Run(cfg, database); err != nil {
			logger.Error("Pipeline", err.Error())
			database.Close()
			os.Exit(1)
		}

	case "fetch":
		if err := pipeline.RunFetch(cfg); err != nil {
			logger.Error("Census", err.Error())
			os.Exit(1)
		}

	case "join":
		if err := pipeline.RunJoin(cfg); err != nil {
			logger.Error("Join", err.Error())
			os.Exit(1)
		}

	default:
		logger.Error("CLI", fmt.Sprintf("Unknown command %q (want run, fetch, or join)", cmd))
		os.Exit(1)
	}
}

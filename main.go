package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"opendoors/cmd"
	"opendoors/internal/config"
	"opendoors/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		// Use default logger config if main config fails
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}
	cmd.SetConfig(cfg, err)

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting Open Doors CLI")

	cmd.Execute()

	log.Debug().Msg("Open Doors CLI shutdown")
	os.Exit(0)
}

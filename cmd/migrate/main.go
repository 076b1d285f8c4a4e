package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"shortr/internal/pkg/logger"
	"shortr/internal/platform/config"
	"shortr/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	status := flag.Bool("status", false, "List applied migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if !*status {
		log.Info().Str("database", cfg.Database.URL).Msg("Applying migrations")
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	}

	applied, err := database.Applied(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migration status")
	}
	for _, name := range applied {
		fmt.Println("applied", name)
	}
}

package main

import (
	"log"

	"github.com/tablecritic/tablecritic/internal/bootstrap"
	"github.com/tablecritic/tablecritic/internal/config"
	"github.com/tablecritic/tablecritic/internal/server"
	"github.com/tablecritic/tablecritic/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.SeedSampleData {
		if err := bootstrap.SeedRestaurants(db); err != nil {
			log.Fatalf("failed to seed restaurants: %v", err)
		}
	}

	srv := server.New(db, cfg)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

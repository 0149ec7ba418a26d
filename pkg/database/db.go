package database

import (
	"fmt"
	"log"
	"os"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	DB   *gorm.DB
	once sync.Once
)

// Connect opens the application database. The driver is selected with
// DB_DRIVER: "postgres" (default) or "sqlite" for local development.
func Connect() *gorm.DB {
	once.Do(func() {
		db, err := open()
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}

		DB = db
	})

	return DB
}

func GetDB() *gorm.DB {
	if DB == nil {
		return Connect()
	}
	return DB
}

func open() (*gorm.DB, error) {
	if valueOrDefault("DB_DRIVER", "postgres") == "sqlite" {
		path := valueOrDefault("DB_PATH", "tablecritic.db")
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		valueOrDefault("DB_HOST", "localhost"),
		valueOrDefault("DB_USER", "postgres"),
		os.Getenv("DB_PASS"),
		valueOrDefault("DB_NAME", "tablecritic"),
		valueOrDefault("DB_PORT", "5432"),
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func valueOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

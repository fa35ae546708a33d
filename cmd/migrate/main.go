// Command migrate applies pending schema migrations and exits.
package main

import (
	"os"

	"github.com/ad/go-telegram-gorbushka/internal/config"
	"github.com/ad/go-telegram-gorbushka/internal/db"
	"github.com/ad/go-telegram-gorbushka/internal/logging"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger().WithError(err).Fatal("Failed to load config")
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		logging.Logger().WithError(err).Fatal("Failed to set up logging")
	}

	sqlDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer sqlDB.Close()

	version, err := db.Migrate(sqlDB)
	if err != nil {
		logger.WithError(err).Fatal("Failed to migrate schema")
	}

	logger.WithField("schema_version", version).Info("Schema is up to date")
}

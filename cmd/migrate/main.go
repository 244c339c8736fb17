package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/database"
	"github.com/mpetrov/screencast/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg)

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.NewMigrator(db, log).Run(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	log.Info().Msg("migrations complete")
}

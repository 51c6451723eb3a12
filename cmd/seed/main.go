package main

import (
	"context"
	"os"
	"time"

	usersvc "tabiconst-backend/internal/application/user"
	"tabiconst-backend/internal/config"
	"tabiconst-backend/internal/infrastructure/database"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Seed migrates the schema and ensures the bootstrap admin account exists.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database open")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	svc := &usersvc.Service{DB: db}
	u, created, err := svc.EnsureAdmin(ctx, usersvc.AdminInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Phone:    cfg.AdminPhone,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("ensure admin")
	}
	if created {
		log.Info().Str("email", u.Email).Msg("admin account created")
	} else {
		log.Info().Str("email", u.Email).Msg("existing account promoted to admin")
	}
}

package cmd

import (
	"context"
	"fmt"

	"tombola/config"
	"tombola/database"
	"tombola/events"
	"tombola/repository"
	"tombola/service"

	log "github.com/sirupsen/logrus"
)

// app holds the wired dependencies shared by the server and the admin commands
type app struct {
	cfg            *config.Config
	db             *database.DB
	eventBus       *events.Bus
	uowFactory     service.UnitOfWorkFactory
	raffles        service.RaffleService
	participations service.ParticipationService
	validation     service.ValidationService
	draw           service.DrawService
	users          service.UserService
}

// newApp connects to the database and builds the services
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Get()

	log.Debug("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	return &app{
		cfg:            cfg,
		db:             db,
		eventBus:       eventBus,
		uowFactory:     uowFactory,
		raffles:        service.NewRaffleService(uowFactory),
		participations: service.NewParticipationService(uowFactory),
		validation:     service.NewValidationService(uowFactory),
		draw:           service.NewDrawService(uowFactory, nil),
		users:          service.NewUserService(uowFactory),
	}, nil
}

func (a *app) close() {
	a.db.Close()
}

// ConfigureLogging applies the configured level and formatter to logrus
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"tombola/api"
	"tombola/infrastructure"
	"tombola/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the HTTP service until ctx is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting tombola...")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, a.cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()
	a.eventBus.SubscribeAll(metrics.RecordEvent)

	infrastructure.NewAuditLogger(nil).Register(a.eventBus)

	// Event forwarding is optional
	var natsClient *infrastructure.NATSClient
	if a.cfg.NATSServers != "" {
		natsClient = infrastructure.NewNATSClient(a.cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		if err := natsClient.EnsureEventStream(); err != nil {
			natsClient.Close()
			return err
		}
		infrastructure.NewEventForwarder(natsClient, metrics).Register(a.eventBus)
		log.Info("Event forwarding to NATS enabled")
	} else {
		log.Info("NATS_SERVERS not set, event forwarding disabled")
	}

	handler := api.NewHandler(api.Services{
		Raffles:        a.raffles,
		Participations: a.participations,
		Validation:     a.validation,
		Draw:           a.draw,
		Users:          a.users,
	})
	verifier := api.NewTokenVerifier(a.cfg.JWTSecret, a.cfg.JWTIssuer)
	server := api.NewServer(a.cfg.HTTPAddr, api.NewRouter(handler, verifier, metrics))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	log.WithField("environment", a.cfg.Environment).Info("Tombola is running")

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics provider")
	}

	log.Info("Shutdown completed")
	return nil
}

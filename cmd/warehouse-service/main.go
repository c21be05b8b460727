// Command warehouse-service wires the FEFO inventory core into an
// operator-facing process: a background scheduler running the four alert
// checks on fixed cadences, a health check, a manual "run all checks now"
// endpoint, and thin HTTP routes over the FEFO, receiving and delivery-note
// services. Item/batch CRUD, authentication and RBAC are out of core scope
// (spec §1) and live elsewhere.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/inkwms/warehouse/internal/warehouse/alerts"
	"github.com/inkwms/warehouse/internal/warehouse/dispatch"
	"github.com/inkwms/warehouse/internal/warehouse/events"
	"github.com/inkwms/warehouse/internal/warehouse/fefo"
	"github.com/inkwms/warehouse/internal/warehouse/handler"
	"github.com/inkwms/warehouse/internal/warehouse/ledger"
	"github.com/inkwms/warehouse/internal/warehouse/receiving"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/config"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/httputil"
	"github.com/inkwms/warehouse/pkg/logger"
	"github.com/inkwms/warehouse/pkg/messaging"
)

func main() {
	cfg, err := config.LoadWithValidation("warehouse-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("warehouse-service", cfg.Server.Environment)
	log.Info().Msg("starting Warehouse Service")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var publisher *events.Publisher
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, domain events will not be published")
	} else {
		defer rmq.Close()
		publisher, err = events.New(rmq, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create event publisher, domain events will not be published")
			publisher = nil
		}
	}

	// Repositories
	itemRepo := repository.NewItemRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	noteRepo := repository.NewDeliveryNoteRepository(db)

	// Domain services
	led := ledger.New(db, batchRepo, movementRepo).WithPublisher(publisher)
	fefoEngine := fefo.NewEngine(batchRepo)
	receivingSvc := receiving.NewService(db, itemRepo, locationRepo, batchRepo, led)
	dispatchSvc := dispatch.NewService(db, noteRepo, batchRepo, customerRepo, led)

	scanner := alerts.NewScanner(itemRepo, batchRepo, movementRepo, alertRepo, led, log).
		WithDeadStockDays(cfg.Alerts.DeadStockDays).
		WithPublisher(publisher)
	scheduler := alerts.NewScheduler(scanner, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Alerts.SchedulerOn {
		scheduler.Start(ctx)
	} else {
		log.Info().Msg("alert scheduler disabled by configuration")
	}

	fefoHandler := handler.NewFEFOHandler(fefoEngine, log)
	receivingHandler := handler.NewReceivingHandler(receivingSvc, log)
	dispatchHandler := handler.NewDispatchHandler(dispatchSvc, customerRepo, itemRepo, batchRepo, log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":   "healthy",
			"service":  "warehouse-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			status["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	r.Route("/api/v1/warehouse", func(r chi.Router) {
		// Manual trigger for the four alert checks, per spec §6's
		// "Periodic check CLI (operator-facing)" surface.
		r.Post("/alerts/run", func(w http.ResponseWriter, r *http.Request) {
			summary := scanner.RunAll(r.Context())
			httputil.JSON(w, http.StatusOK, summary)
		})

		r.Get("/items/{itemID}/fefo/suggest", fefoHandler.Suggest)
		r.Get("/batches/{batchID}/fefo/validate", fefoHandler.Validate)
		r.Get("/items/{itemID}/fefo/summary", fefoHandler.Summary)

		r.Post("/receiving", receivingHandler.ReceiveSingle)
		r.Post("/receiving/batch", receivingHandler.ReceiveMultiple)

		r.Post("/delivery-notes", dispatchHandler.Create)
		r.Post("/delivery-notes/{id}/issue", dispatchHandler.Issue)
		r.Post("/delivery-notes/{id}/deliver", dispatchHandler.Deliver)
		r.Post("/delivery-notes/{id}/invoice", dispatchHandler.Invoice)
		r.Post("/delivery-notes/{id}/cancel", dispatchHandler.Cancel)
		r.Get("/delivery-notes/{id}/pdf", dispatchHandler.PDF)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	scheduler.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/qaremind/golang_services/internal/platform/config"
	"github.com/qaremind/golang_services/internal/platform/database"
	"github.com/qaremind/golang_services/internal/platform/logger"

	"github.com/qaremind/golang_services/internal/reminder_service/app"
	"github.com/qaremind/golang_services/internal/reminder_service/middleware"
	"github.com/qaremind/golang_services/internal/reminder_service/notifier"
	"github.com/qaremind/golang_services/internal/reminder_service/repository/postgres"
	transporthttp "github.com/qaremind/golang_services/internal/reminder_service/transport/http"
)

const (
	serviceName     = "reminder-service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting service...", "service", serviceName)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		log.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("Database connection pool initialized")

	reminderRepo := postgres.NewPgReminderRepository(dbPool, log)

	twilioNotifier, err := notifier.NewTwilioNotifier(log, notifier.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
		BaseURL:    cfg.TwilioAPIBaseURL,
	}, nil)
	if err != nil {
		log.Error("Failed to initialize Twilio notifier", "error", err)
		os.Exit(1)
	}

	dispatcher := app.NewDispatcher(reminderRepo, twilioNotifier, log, app.DispatcherConfig{
		BatchSize: cfg.SchedulerBatchSize,
	})
	scheduler := app.NewScheduler(dispatcher, cfg.SchedulerCheckInterval, log)

	validate := validator.New()
	reminderHandler := transporthttp.NewReminderHandler(reminderRepo, log, validate)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(30 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/reminders", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTAccessSecret, log))
		reminderHandler.RegisterRoutes(r)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		log.Info("Starting HTTP server...", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		return scheduler.Run(groupCtx)
	})

	g.Go(func() error {
		<-groupCtx.Done()
		log.Info("Initiating HTTP server graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", "error", err)
			return err
		}
		log.Info("HTTP server has been shut down.")
		return nil
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Info("Received OS signal, shutting down...", "signal", sig.String())
			mainCancel()
			return nil
		case <-groupCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Service shut down with error", "error", err)
		os.Exit(1)
	}
	log.Info("Service shut down gracefully.")
}

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
	"github.com/go-chi/cors"

	"github.com/polisdoc/polisdoc-backend/internal/policy/events"
	"github.com/polisdoc/polisdoc-backend/internal/policy/extractor"
	"github.com/polisdoc/polisdoc-backend/internal/policy/handler"
	"github.com/polisdoc/polisdoc-backend/internal/policy/pdftext"
	"github.com/polisdoc/polisdoc-backend/internal/policy/repository"
	"github.com/polisdoc/polisdoc-backend/internal/policy/service"
	"github.com/polisdoc/polisdoc-backend/pkg/config"
	"github.com/polisdoc/polisdoc-backend/pkg/database"
	"github.com/polisdoc/polisdoc-backend/pkg/httputil"
	"github.com/polisdoc/polisdoc-backend/pkg/i18n"
	"github.com/polisdoc/polisdoc-backend/pkg/logger"
	"github.com/polisdoc/polisdoc-backend/pkg/messaging"
)

const serviceName = "extract-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.SetLevel(cfg.Log.Level)
	log.Info().Str("pdf_backend", cfg.PDF.Backend).Msg("starting Extract Service")

	converter, err := pdftext.New(pdftext.Options{
		Backend:       cfg.PDF.Backend,
		PdftotextPath: cfg.PDF.PdftotextPath,
		Timeout:       cfg.PDF.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pdf converter")
	}

	engine := extractor.NewEngine(extractor.WithMaxTextBytes(cfg.Extraction.MaxTextBytes))

	var opts []service.Option
	health := map[string]func(context.Context) map[string]string{}

	// Audit log (optional)
	if cfg.Database.Enabled {
		log.Info().Str("database", cfg.Database.Target()).Msg("connecting to audit database")
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		auditRepo := repository.NewAuditRepository(db)
		if cfg.Database.AutoMigrate {
			if err := auditRepo.EnsureSchema(context.Background()); err != nil {
				log.Fatal().Err(err).Msg("failed to migrate audit schema")
			}
		}
		opts = append(opts, service.WithAudit(auditRepo))
		health["database"] = db.Health
	}

	// Events (optional)
	if cfg.RabbitMQ.Enabled {
		rmq, err := messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err := messaging.NewPublisher(rmq, cfg.RabbitMQ.Exchange, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		opts = append(opts, service.WithEvents(events.NewPublisher(publisher)))
		health["rabbitmq"] = func(context.Context) map[string]string { return rmq.Health() }
	}

	policyService := service.NewService(engine, converter, log, opts...)
	policyHandler := handler.NewPolicyHandler(policyService, log)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(cfg.PDF.Timeout + 10*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Accept-Language"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(i18n.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":      "healthy",
			"service":     serviceName,
			"pdf_backend": converter.Name(),
		}
		for name, check := range health {
			status[name] = check(r.Context())
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.MaxBodyBytes(cfg.Server.MaxBodyBytes))
		r.Use(httputil.BearerAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log))
		policyHandler.Routes(r)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

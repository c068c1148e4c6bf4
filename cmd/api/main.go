// Package main is the entry point for the API server.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relaydesk/support-inbox/internal/config"
	"github.com/relaydesk/support-inbox/internal/handler"
	"github.com/relaydesk/support-inbox/internal/middleware"
	natsclient "github.com/relaydesk/support-inbox/internal/nats"
	"github.com/relaydesk/support-inbox/internal/realtime"
	"github.com/relaydesk/support-inbox/internal/service"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
	"github.com/relaydesk/support-inbox/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "support-inbox", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Entity store with seed fixtures
	st := store.Seeded(cfg.SimulatedLatency)

	// Unread ledger and notification bus; the ledger observes every
	// inbound-message notification until the conversation is acknowledged.
	unread := service.NewUnreadLedger()
	bus := realtime.NewBus(log)
	bus.Subscribe(unread.Increment)

	// Optional NATS event bridge
	var nc *natsclient.Client
	if cfg.NATSURL != "" {
		nc, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, event bridge disabled", zap.Error(err))
		} else {
			defer nc.Close()
			bridge := natsclient.NewBridge(nc, log)
			if err := bridge.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure stream", zap.Error(err))
			}
			bus.Subscribe(bridge.NotifyNewMessage)
			bus.SubscribeMessages(bridge.RepublishMessage)
		}
	}

	// Live update simulator
	simulator := realtime.NewSimulator(st, bus, cfg.PushInterval, log)
	defer simulator.Disconnect()

	// Services
	conversationSvc := service.NewConversationService(st, unread, log)
	messageSvc := service.NewMessageService(st, bus, cfg.MessagesPageSize, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(nc)
	conversationHandler := handler.NewConversationHandler(conversationSvc, log)
	messageHandler := handler.NewMessageHandler(messageSvc, conversationSvc, log)
	streamHandler := handler.NewStreamHandler(simulator, conversationSvc, log)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/agents", conversationHandler.Agents)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Put("/status", conversationHandler.UpdateStatus)
				r.Post("/read", conversationHandler.MarkRead)

				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Send)

				r.Get("/stream", streamHandler.Stream)
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

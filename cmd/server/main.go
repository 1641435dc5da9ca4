package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"viajes/internal/app"
	"viajes/internal/config"
	"viajes/internal/handler"
	"viajes/internal/maps"
	"viajes/internal/notify"
	internalRedis "viajes/internal/redis"
	"viajes/internal/repository/postgres"
	"viajes/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Build the notification pipeline: every deliverer behind one async
	// dispatcher so trip transitions never wait on a transport.
	notifiers := notify.Multi{notify.NewLogNotifier()}

	hub := notify.NewHub()
	notifiers = append(notifiers, hub)

	var amqpNotifier *notify.AMQPNotifier
	if cfg.RabbitMQ.Enabled {
		amqpNotifier, err = notify.NewAMQPNotifier(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer amqpNotifier.Close()
		notifiers = append(notifiers, amqpNotifier)
		log.Printf("Connected to RabbitMQ (exchange %s)", cfg.RabbitMQ.Exchange)
	}

	dispatcher := notify.NewDispatcher(notifiers)
	defer dispatcher.Close()

	// Wire dependencies.
	server := wireServer(db, redisClient, hub, dispatcher, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, hub *notify.Hub, dispatcher *notify.Dispatcher, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	tripRepo := postgres.NewTripRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	units := postgres.NewAtomic(db)

	// Fare estimation: fixed tariff by default, Directions-based when maps
	// is configured (falling back to the fixed tariff on API failure).
	var fares service.FareEstimator = service.FixedFare(cfg.Fare.FixedAmount)
	if cfg.Maps.Enabled && cfg.Maps.APIKey != "" {
		estimator, err := maps.NewEstimator(cfg.Maps.APIKey, cfg.Fare.Base, cfg.Fare.PerKm, fares)
		if err != nil {
			log.Printf("failed to initialize maps estimator, using fixed fare: %v", err)
		} else {
			fares = estimator
			log.Println("Google Maps fare estimation enabled")
		}
	}

	// Initialize services.
	tripService := service.NewTripService(tripRepo, driverRepo, clientRepo, units, fares, dispatcher, lockStore, cacheStore)
	driverService := service.NewDriverService(driverRepo)
	clientService := service.NewClientService(clientRepo)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService)
	driverHandler := handler.NewDriverHandler(driverService, tripService)
	clientHandler := handler.NewClientHandler(clientService, tripService)
	wsHandler := handler.NewWSHandler(hub)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:   tripHandler,
		DriverHandler: driverHandler,
		ClientHandler: clientHandler,
		WSHandler:     wsHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"logipro/internal/app"
	"logipro/internal/config"
	"logipro/internal/domain/identity"
	"logipro/internal/domain/tracking"
	"logipro/internal/infrastructure/database/postgres"
	"logipro/internal/infrastructure/events"
	infraIdentity "logipro/internal/infrastructure/identity"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/infrastructure/storage"
	"logipro/internal/logger"
	"logipro/internal/routes"
	"logipro/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	var sink *logger.FileSink
	if cfg.Log.File != "" {
		sink = &logger.FileSink{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		}
	}
	if err := logger.Init(env, sink); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("store", cfg.Database.Driver),
	)

	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT secret is missing. Please set JWT_SECRET environment variable.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend := openBackend(ctx, cfg)
	defer closeBackend()

	blobs, err := storage.NewFileStore(afero.NewOsFs(), cfg.Storage.Root, cfg.Storage.PublicURL)
	if err != nil {
		logger.Fatal("Failed to prepare blob storage", zap.Error(err))
	}

	hub := events.NewHub(cfg.CORS.AllowedOrigins)
	go hub.Run(ctx)

	publisher, closePublisher := newPublisher(cfg, hub)
	defer closePublisher()

	services := app.NewServices(cfg, backend, app.Adapters{
		Verifier:  newVerifier(ctx, cfg),
		Blobs:     blobs,
		Publisher: publisher,
	})

	if cfg.Bootstrap.AdminEmail != "" && cfg.Bootstrap.AdminPassword != "" {
		if err := services.Users.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			logger.Fatal("Failed to bootstrap admin account", zap.Error(err))
		}
	}

	scheduler := cron.New()
	if _, err := services.Users.ScheduleTokenCleanup(scheduler, cfg.Jobs.TokenCleanupSchedule, cfg.Jobs.TokenRetention); err != nil {
		logger.Fatal("Invalid token cleanup schedule", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := routes.SetupRoutes(cfg, &routes.Dependencies{
		Services: services,
		Drivers:  backend.Drivers,
		Live:     hub,
		Media:    blobs.FileSystem(),
		Health:   backend.Health,
	})

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}

func openBackend(ctx context.Context, cfg *config.Config) (*app.Backend, func()) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using the in-memory store; data is lost on restart")
		return app.NewMemoryBackend(memory.NewStore()), func() {}
	}

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	return app.NewPostgresBackend(db), func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
}

// newVerifier falls back to a verifier that rejects every token, so customer
// sign-in answers 503 instead of the service refusing to start.
func newVerifier(ctx context.Context, cfg *config.Config) identity.Verifier {
	if cfg.Firebase.CredentialsFile == "" {
		logger.Warn("Firebase credentials not configured; customer sign-in is disabled")
		return infraIdentity.Disabled{}
	}

	verifier, err := infraIdentity.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Error("Failed to initialise Firebase; customer sign-in is disabled", zap.Error(err))
		return infraIdentity.Disabled{}
	}
	return verifier
}

// newPublisher always feeds the live tracking hub and adds MQTT when a
// broker is configured. A broker that cannot be reached is skipped.
func newPublisher(cfg *config.Config, hub *events.Hub) (tracking.Publisher, func()) {
	fanout := events.Fanout{hub}
	if cfg.MQTT.Broker == "" {
		return fanout, func() {}
	}

	client := mqtt.NewClient(&mqtt.Config{
		Broker:               cfg.MQTT.Broker,
		ClientID:             cfg.MQTT.ClientID,
		Username:             cfg.MQTT.Username,
		Password:             cfg.MQTT.Password,
		CleanSession:         true,
		KeepAlive:            30,
		ConnectTimeout:       10,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
	}, logger.Logger)

	if err := client.Connect(); err != nil {
		logger.Error("MQTT broker unreachable; status events stay in-process", zap.Error(err))
		return fanout, func() {}
	}

	fanout = append(fanout, events.NewMQTTPublisher(client, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS))
	return fanout, client.Disconnect
}

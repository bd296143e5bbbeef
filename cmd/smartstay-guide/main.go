package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/audit"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/database"
	httpapi "github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/http"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/logger"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/mqtt"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/provider"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/repository"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "smartstay-guide")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Optional DB; memory repos keep the service usable for dev and tests.
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for smartstay-guide")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}

	var (
		unitsRepo       repository.UnitsRepo
		devicesRepo     repository.DevicesRepo
		credentialsRepo repository.CredentialsRepo
		logsRepo        repository.AccessLogsRepo
	)
	if db != nil {
		unitsRepo = repository.NewPostgresUnitsRepo(db)
		devicesRepo = repository.NewPostgresDevicesRepo(db)
		credentialsRepo = repository.NewPostgresCredentialsRepo(db)
		logsRepo = repository.NewPostgresAccessLogsRepo(db)
	} else {
		memUnits := repository.NewMemoryUnitsRepo()
		unitsRepo = memUnits
		devicesRepo = repository.NewMemoryDevicesRepo(memUnits)
		credentialsRepo = repository.NewMemoryCredentialsRepo()
		logsRepo = repository.NewMemoryAccessLogsRepo()
	}

	// Optional MQTT broker for the Tasmota relays.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		if c, err := mqtt.NewClient(&cfg.MQTT, log); err == nil {
			mqttClient = c
		} else {
			log.Warn("MQTT enabled but connection failed, Tasmota devices unavailable", zap.Error(err))
		}
	}
	var publisher provider.MQTTPublisher
	if mqttClient != nil {
		publisher = mqttClient
	}

	registry := provider.NewRegistry(
		provider.NewGenericHTTP(cfg.Generic, log),
		log,
		provider.NewRaixer(cfg.Raixer, log),
		provider.NewShelly(cfg.Shelly, log),
		provider.NewSonoff(cfg.Sonoff, log),
		provider.NewHomeAssistant(cfg.HomeAssistant, log),
		provider.NewNuki(cfg.Nuki, log),
		provider.NewTasmota(publisher, log),
	)

	var stream audit.Publisher
	if p := audit.NewStreamPublisher(redisClient, cfg.Audit.Stream); p != nil {
		stream = p
	}
	recorder := audit.NewRecorder(logsRepo, stream, log)

	commands := service.NewCommandService(devicesRepo, registry, recorder, log)
	unlock := service.NewUnlockService(unitsRepo, devicesRepo, credentialsRepo, commands, recorder, log)

	public := httpapi.NewPublicHandler(unlock, log)
	iot := httpapi.NewIoTHandler(commands, registry, logsRepo, log)
	auth := httpapi.NewAuthVerifier(cfg.Auth.JWTSecret, log)
	router := httpapi.NewRouter(public, iot, auth, log)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if db != nil {
		_ = db.Close()
	}
}

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

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/servicecoinrwb/BAS-System/config"
	"github.com/servicecoinrwb/BAS-System/internal/actuators"
	"github.com/servicecoinrwb/BAS-System/internal/api"
	"github.com/servicecoinrwb/BAS-System/internal/control"
	"github.com/servicecoinrwb/BAS-System/internal/db"
	"github.com/servicecoinrwb/BAS-System/internal/engine"
	"github.com/servicecoinrwb/BAS-System/internal/metrics"
	"github.com/servicecoinrwb/BAS-System/internal/mqtt"
	"github.com/servicecoinrwb/BAS-System/internal/notify"
	"github.com/servicecoinrwb/BAS-System/internal/schedule"
	"github.com/servicecoinrwb/BAS-System/internal/sensors"
	"github.com/servicecoinrwb/BAS-System/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
	}
	log.Info().Str("path", configPath).Msg("configuration loaded")

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	appStore := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One sensor source per unit: the built-in plant simulator, or a
	// holder for the latest broker telemetry.
	sources := make(map[string]sensors.Source, len(cfg.Units))
	latest := make(map[string]*sensors.LatestSource)
	for _, uc := range cfg.Units {
		switch uc.Source {
		case "mqtt":
			ls := sensors.NewLatestSource(10 * cfg.Control.ScanInterval)
			latest[uc.ID] = ls
			sources[uc.ID] = ls
		default:
			sources[uc.ID] = sensors.NewSimulator(75, 88, uc.HasCO2Sensor)
		}
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.NewClient(mqtt.ClientConfig{
			Broker:    cfg.MQTT.Broker,
			ClientID:  cfg.MQTT.ClientID,
			Username:  cfg.MQTT.Username,
			Password:  cfg.MQTT.Password,
			BaseTopic: cfg.MQTT.BaseTopic,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MQTT broker")
		}
		defer mqttClient.Close()
	}

	var bus actuators.Bus = actuators.LogBus{}
	if cfg.Serial.Enabled {
		port, err := os.OpenFile(cfg.Serial.Device, os.O_RDWR, 0)
		if err != nil {
			log.Fatal().Err(err).Str("device", cfg.Serial.Device).Msg("failed to open relay port")
		}
		defer port.Close()
		bus = actuators.NewModbusBus(port)
		log.Info().Str("device", cfg.Serial.Device).Msg("relay output bus opened")
	}

	var webpushOptions *webpush.Options
	var pool *notify.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notify.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
	} else {
		log.Warn().Msg("VAPID keys not configured, push notifications disabled")
	}

	var publisher engine.StatePublisher
	if mqttClient != nil {
		publisher = mqttClient
	}

	resolver := schedule.NewResolver(appStore)
	eng, err := engine.NewService(cfg, appStore, resolver, sources, bus, publisher, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build control engine")
	}
	if err := eng.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap control engine")
	}

	if mqttClient != nil {
		mqttClient.SetHandlers(mqtt.MessageHandlers{
			OnSensorReading: func(unitID string, reading mqtt.SensorReading) {
				ls, ok := latest[unitID]
				if !ok {
					log.Warn().Str("unit", unitID).Msg("telemetry for unknown or simulated unit")
					return
				}
				ls.Update(control.Snapshot{
					ZoneTemp:      reading.ZoneTemp,
					OutdoorTemp:   reading.OutdoorTemp,
					DischargeTemp: reading.DischargeTemp,
					CO2PPM:        reading.CO2PPM,
					FanStatus:     reading.FanStatus,
				}, time.Now().UTC())
			},
			OnEmergencyStop: func(asserted bool) {
				eng.SetEmergencyStop(context.Background(), asserted)
			},
		})
		if err := mqttClient.SubscribeAll(); err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe to MQTT topics")
		}
	}

	metrics.Init()

	go eng.Run(ctx)

	router := api.NewRouter(&cfg.Server, appStore, eng, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutdown signal received, stopping services")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("server gracefully stopped")
}

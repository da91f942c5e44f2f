package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/ahu-simulator/internal/service_registry"
	"github.com/benmeehan/ahu-simulator/internal/services"
	"github.com/benmeehan/ahu-simulator/internal/utils"
	"github.com/benmeehan/ahu-simulator/pkg/file"
	"github.com/benmeehan/ahu-simulator/pkg/mqtt"
	"github.com/benmeehan/ahu-simulator/pkg/weather"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	flag.Parse()

	// Set up structured logging with JSON output
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file; invalid configuration is fatal
	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Generate a unique MQTT Client ID by appending a UUID
	config.MQTT.ClientID = config.MQTT.ClientID + "-" + uuid.New().String()
	log.Info().Str("client_id", config.MQTT.ClientID).Msg("Using MQTT Client ID")

	// Initialize the shared MQTT connection
	mqttClient := mqtt.NewMqttService(fileClient)
	if err := mqttClient.Initialize(config.MQTT.Broker, config.MQTT.ClientID, config.MQTT.CACertificate); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
	}

	// Pick the environment source for the configured operating mode.
	// Live weather is always wrapped with a simulated fallback so a
	// slow or failing feed can never stall the control loops.
	simulated := weather.NewSimulatedProvider(config.Weather.Seed)
	var source weather.Provider = simulated
	if config.Weather.Mode == utils.WeatherModeLive {
		live := weather.NewOpenMeteoProvider(config.Weather.Latitude, config.Weather.Longitude, config.WeatherTimeout())
		source = weather.NewFallbackProvider(live, simulated, config.WeatherTimeout(), log)
	}
	log.Info().Str("mode", config.Weather.Mode).Msg("Environment source initialized")

	publisher := services.NewTelemetryPublisher(config.Telemetry.TopicPrefix, config.Telemetry.QOS, mqttClient, log)

	fleet, err := services.NewFleetService(config, source, publisher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build device fleet")
	}

	// Register services and start them in order
	registry := service_registry.NewServiceRegistry(log)
	registry.RegisterService("fleet", fleet)
	if config.Health.Enabled {
		registry.RegisterService("health", services.NewHealthService(
			config.Health.Topic,
			config.HealthInterval(),
			config.MQTT.ClientID,
			config.Health.QOS,
			mqttClient,
			log,
		))
	}

	if err := registry.StartServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start services")
	}
	log.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down gracefully...")
	if err := registry.StopServices(); err != nil {
		log.Error().Err(err).Msg("Some services failed to stop cleanly")
	}
	publisher.Close()
	mqttClient.Disconnect(250)
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	logpkg "festflow/common/logger"
	"festflow/common/mqtt"
	rediscommon "festflow/common/redis"
	"festflow/internal/config"
	"festflow/internal/consumer"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "festflow-notifier")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.MQTTEnabled {
		logger.Fatal("festflow-notifier requires MQTT_ENABLED=true")
	}

	logger.Info("Starting festflow-notifier",
		zap.String("stream", cfg.Registration.Stream),
		zap.String("consumer_group", cfg.Registration.ConsumerGroup),
		zap.String("topic_prefix", cfg.MQTTTopicPrefix),
	)

	redisClient, err := rediscommon.Connect(context.Background(), &cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rediscommon.Close(redisClient)

	mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer mqttClient.Disconnect()

	registrations := consumer.NewRegistrationConsumer(
		redisClient,
		mqttClient,
		logger,
		cfg.Registration.Stream,
		cfg.Registration.ConsumerGroup,
		cfg.Registration.ConsumerName,
		cfg.Registration.BatchSize,
		cfg.MQTTTopicPrefix,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- registrations.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error("Registration consumer stopped", zap.Error(err))
		}
	}

	logger.Info("Service stopped")
}

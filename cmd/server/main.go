package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"rebateforge-site/internal/app"
	"rebateforge-site/internal/config"
	"rebateforge-site/internal/logging"
	"rebateforge-site/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	tp, err := telemetry.InitTracing(cfg.ServiceName, cfg.ServiceVersion, cfg.Telemetry.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := telemetry.ShutdownTracing(context.Background(), tp); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		logger.WithFields(logrus.Fields{
			"provider": cfg.Provider.Kind,
			"missing":  strings.Join(missing, ","),
		}).Warn("Provider credentials not set; subscriptions will fail")
	}

	application, err := app.Build(app.Options{
		Config:         cfg,
		Logger:         logger,
		TracerProvider: otel.GetTracerProvider(),
	})
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

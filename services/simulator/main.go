// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command simulator starts the scenario simulator HTTP server: the
// orchestration and Monte Carlo cascade-risk engine sitting in front of
// the energy, water and transport services, the risk engine, and the
// reporting registry.
//
// # Environment Variables
//
//   - SIMULATOR_PORT: HTTP server port (default: 12310)
//   - ENERGY_SERVICE_URL / WATER_SERVICE_URL / TRANSPORT_SERVICE_URL:
//     sector service base URLs at the /api/v1 level
//   - RISK_ENGINE_URL: risk engine base URL (default: http://risk_engine:8000/api/v1)
//   - REPORTING_SERVICE_URL: reporting registry base URL
//   - CATALOG_PATH: optional scenario catalog override (YAML)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: otel-collector:4317)
package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kuprich777/diploma/pkg/logging"
	"github.com/kuprich777/diploma/services/simulator/catalog"
	"github.com/kuprich777/diploma/services/simulator/clients"
	"github.com/kuprich777/diploma/services/simulator/config"
	"github.com/kuprich777/diploma/services/simulator/engine"
	"github.com/kuprich777/diploma/services/simulator/handlers"
	"github.com/kuprich777/diploma/services/simulator/observability"
	"github.com/kuprich777/diploma/services/simulator/routes"
)

func initTracer(cfg *config.Config) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(cfg.OTLPEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("scenario-simulator")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: could not load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		Service: cfg.ServiceName,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	cleanup, err := initTracer(cfg)
	if err != nil {
		log.Fatalf("FATAL: failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.InitMetrics()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("FATAL: could not load scenario catalog: %v", err)
	}
	slog.Info("scenario catalog loaded", "scenarios", len(cat.List()), "path", cfg.CatalogPath)

	sectors := clients.NewSectorClient(cfg)
	risk := clients.NewRiskClient(cfg)
	reporting := clients.NewReportingClient(cfg)

	app := &engine.Applicator{
		Catalog:               cat,
		Sectors:               sectors,
		Risk:                  risk,
		Init:                  &engine.Initializer{Sectors: sectors},
		DefaultQuantThreshold: cfg.NonInitiatorThresholdQuant,
		DefaultOutageDuration: cfg.DefaultOutageDuration,
	}
	mc := &engine.MonteCarlo{
		Applicator:      app,
		Exporter:        reporting,
		Sampler:         engine.UniformJitterSampler{},
		MaxConcurrency:  cfg.MaxTrialConcurrency,
		MinSuccessRatio: cfg.MinSuccessRatio,
	}

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware("scenario-simulator"))
	handlers.RegisterValidations()
	routes.SetupRoutes(router, cat, app, mc)

	slog.Info("scenario simulator started", "port", cfg.Port, "env", cfg.Env)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: server exited: %v", err)
	}
}

// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procurisk/procurisk/pkg/logging"
	"github.com/procurisk/procurisk/services/llm"
	"github.com/procurisk/procurisk/services/riskengine/assess"
	"github.com/procurisk/procurisk/services/riskengine/cache"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/procurisk/procurisk/services/riskengine/engine"
	"github.com/procurisk/procurisk/services/riskengine/evidence"
	"github.com/procurisk/procurisk/services/riskengine/routes"
	"github.com/procurisk/procurisk/services/riskengine/sink"
	storage "github.com/procurisk/procurisk/services/riskengine/storage/badger"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "procurisk-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("riskengine-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("Invalid numeric env var, using default", "key", key, "value", raw)
		return fallback
	}
	return v
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "12300"
	}

	appLogger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "riskengine",
		JSON:    true,
		LogDir:  os.Getenv("LOG_DIR"),
	})
	defer appLogger.Close()
	slog.SetDefault(appLogger.Slog())

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	// Weaviate holds both the supplier directory and the evidence
	// collections; the engine cannot run without it.
	weaviateURL := strings.Trim(os.Getenv("WEAVIATE_SERVICE_URL"), "\"' ")
	if weaviateURL == "" {
		log.Fatalf("WEAVIATE_SERVICE_URL is required")
	}
	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		log.Fatalf("WEAVIATE_SERVICE_URL is invalid: %q", weaviateURL)
	}
	weaviateClient, err := weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
	if err != nil {
		log.Fatalf("Failed to create Weaviate client: %v", err)
	}
	datatypes.EnsureWeaviateSchema(weaviateClient)

	log.Println("Configuring the assessment backend")
	var llmClient llm.LLMClient
	switch os.Getenv("LLM_BACKEND") {
	case "openai":
		llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI assessment backend")
	case "ollama":
		llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama assessment backend")
	default:
		slog.Warn("LLM_BACKEND not set or invalid, defaulting to ollama")
		llmClient, err = llm.NewOllamaClient()
	}
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	badgerPath := os.Getenv("BADGER_PATH")
	if badgerPath == "" {
		badgerPath = "/data/riskengine"
	}
	db, err := storage.Open(storage.DefaultConfig(badgerPath))
	if err != nil {
		log.Fatalf("Failed to open badger database at %s: %v", badgerPath, err)
	}
	defer db.Close()

	internalLookback := time.Duration(envFloat("INTERNAL_LOOKBACK_DAYS", 365)*24) * time.Hour
	externalLookback := time.Duration(envFloat("EXTERNAL_LOOKBACK_DAYS", 180)*24) * time.Hour
	cacheTTL := time.Duration(envFloat("REVIEW_CACHE_TTL_SECONDS", 3600)) * time.Second

	directory := evidence.NewWeaviateDirectory(weaviateClient)
	aggregator := evidence.NewAggregator(evidence.NewWeaviateStore(weaviateClient),
		internalLookback, externalLookback)
	assessor := assess.NewPromptAssessor(llmClient, envFloat("LLM_REQUESTS_PER_SECOND", 2))
	reviewCache := cache.NewReviewCache(cache.NewBadgerStore(db), cacheTTL)
	resultSink := sink.NewBadgerSink(db)
	writer := evidence.NewWeaviateWriter(weaviateClient)

	eng := engine.New(directory, aggregator, assessor, reviewCache, resultSink)

	router := gin.Default()
	router.Use(otelgin.Middleware("riskengine-service"))
	routes.SetupRoutes(router, eng, writer)

	log.Println("Starting the riskengine server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

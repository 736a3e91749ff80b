package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/qa"
	"github.com/docuchat/docuchat/internal/session"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

// Setup creates and wires the application. Call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	a.otelShutdown = provideOtelShutdown(ctx, cfg, logger)

	emb, err := provideEmbedder(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Embedder = emb

	index, err := vectorindex.New(cfg.EmbedderDimension)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating vector index: %w", err)
	}
	a.Index = index
	a.Sessions = session.New()

	urls := extract.NewHTML(cfg.FetchTimeout, cfg.MaxFetchBytes, logger)
	pdfs := extract.NewPDF(cfg.MaxUploadBytes, logger)

	svc, err := qa.New(emb, index, a.Sessions, urls, pdfs, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating qa service: %w", err)
	}
	a.Service = svc

	logger.Info("application ready",
		"provider", cfg.Provider,
		"model", cfg.EmbedderModel,
		"dimension", cfg.EmbedderDimension,
	)
	return a, nil
}

// provideEmbedder builds the configured embedding backend. The API
// key check happens here so a misconfigured process fails at startup
// rather than on the first request.
func provideEmbedder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (embedding.Embedder, error) {
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return embedding.NewOpenAI(cfg.OpenAIBaseURL, apiKey, cfg.EmbedderModel,
			cfg.EmbedderDimension, logger), nil
	default: // gemini
		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		return embedding.NewGemini(g, cfg.EmbedderModel, cfg.EmbedderDimension, logger)
	}
}

// provideOtelShutdown sets up OTLP trace export when an endpoint is
// configured. Returns a no-op cleanup when tracing is disabled or the
// exporter cannot be created; tracing problems never block startup.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger *slog.Logger) func() {
	if cfg.OTLPEndpoint == "" {
		return func() {}
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("creating OTLP exporter, tracing disabled", "error", err)
		return func() {}
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		logger.Warn("building trace resource, tracing disabled", "error", err)
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("OTLP tracing enabled",
		"endpoint", cfg.OTLPEndpoint,
		"service", cfg.ServiceName,
	)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

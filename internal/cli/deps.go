package cli

import (
	"context"
	"fmt"

	"resumelift/internal/ai"
	"resumelift/internal/analytics"
	"resumelift/internal/config"
	"resumelift/internal/errors"
	"resumelift/internal/extract"
	"resumelift/internal/pipeline"
)

// buildPipeline wires the extraction, AI, and analytics components from
// configuration. The returned cleanup function releases the provider.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*pipeline.Pipeline, *ai.Service, func(), error) {
	aiService, err := ai.NewService(&cfg.AI, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create AI service: %w", err)
	}

	extractor := extract.New(newOCRProvider(cfg), logger)
	sink := newAnalyticsSink(ctx, cfg, logger)
	notifier := newQuotaNotifier(cfg, logger)

	pipe := pipeline.New(extractor, aiService, sink, notifier, logger)
	cleanup := func() {
		if err := aiService.Provider.Close(); err != nil {
			logger.Warn("Failed to close AI provider", "error", err)
		}
	}
	return pipe, aiService, cleanup, nil
}

// newOCRProvider returns the tesseract-backed provider when OCR is
// enabled in configuration, nil otherwise.
func newOCRProvider(cfg *config.Config) extract.Provider {
	if !cfg.OCR.Enabled {
		return nil
	}
	return extract.NewTesseractProvider(cfg.OCR.Languages)
}

// newAnalyticsSink builds the spreadsheet sink. Analytics is strictly
// best-effort: a sink that cannot be constructed degrades to the no-op
// sink with a warning rather than failing the command.
func newAnalyticsSink(ctx context.Context, cfg *config.Config, logger *errors.Logger) analytics.Sink {
	if !cfg.Analytics.Enabled {
		return analytics.NopSink{}
	}
	sink, err := analytics.NewSheetsSink(ctx, &cfg.Analytics, logger)
	if err != nil {
		logger.Warn("Analytics sink unavailable, events will not be recorded",
			"error", err)
		return analytics.NopSink{}
	}
	return sink
}

// newQuotaNotifier builds the webhook notifier for quota alerts.
func newQuotaNotifier(cfg *config.Config, logger *errors.Logger) analytics.Notifier {
	if cfg.Analytics.WebhookURL == "" {
		return analytics.NopNotifier{}
	}
	return analytics.NewWebhookNotifier(cfg.Analytics.WebhookURL, cfg.Analytics.WebhookTimeout, logger)
}

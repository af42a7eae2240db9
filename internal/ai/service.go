package ai

import (
	"context"
	"fmt"

	"resumelift/internal/config"
	"resumelift/internal/errors"
)

// Service bundles the model provider with the prompt builder
type Service struct {
	Provider ModelProvider // Exported for access from server package
	Builder  *Builder
	config   *config.AIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance from configuration
func NewService(cfg *config.AIConfig, logger *errors.Logger) (*Service, error) {
	var provider ModelProvider
	var err error

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"has_credential", cfg.APIKey != "")

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeModelFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		Builder:  NewBuilder(&cfg.CustomPrompts),
		config:   cfg,
		logger:   logger,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

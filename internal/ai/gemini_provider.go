package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resumelift/internal/config"
	resumeliftErrors "resumelift/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// modelCheckTimeout bounds the model availability probe used by the
// health endpoint.
const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements ModelProvider for Google Gemini.
//
// A provider constructed without an API key is still valid: it reports
// HasCredential false and fails any Generate call with an auth-tagged
// error, so callers that skip the proactive check still get a sane
// failure instead of a panic.
type GeminiProvider struct {
	client         *genai.Client
	config         *config.AIConfig
	circuitBreaker *GenerateCircuitBreaker
	logger         *resumeliftErrors.Logger
}

var _ ModelProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider. A missing API key is not
// a construction error; the returned provider simply has no credential.
func NewGeminiProvider(cfg *config.AIConfig, logger *resumeliftErrors.Logger) (*GeminiProvider, error) {
	p := &GeminiProvider{
		config:         cfg,
		circuitBreaker: NewGenerateCircuitBreaker(&cfg.CircuitBreaker, logger),
		logger:         logger,
	}
	if cfg.APIKey == "" {
		logger.Warn("No Gemini API key configured, model calls will use fallback output")
		return p, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, resumeliftErrors.NewAIError(resumeliftErrors.ErrCodeModelFailed,
			"Failed to create Gemini client", err)
	}
	p.client = client
	return p, nil
}

// HasCredential implements ModelProvider
func (g *GeminiProvider) HasCredential() bool {
	return g.client != nil
}

// Generate implements ModelProvider. One request, one response; no
// retries. Failures carry a classified kind so the caller's fallback
// branch is a plain conditional.
func (g *GeminiProvider) Generate(ctx context.Context, prompt, systemInstruction string) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumelift.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("ai.prompt_length", len(prompt)),
	)

	if g.client == nil {
		err := &InvokeError{Kind: KindAuth, Message: "no API key configured"}
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	genaiConfig := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	callCtx := ctx
	if g.config.Timeout != nil {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, *g.config.Timeout)
		defer cancel()
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(prompt), genaiConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		invErr := newInvokeError("completion request failed", err)
		g.logger.Warn("Gemini completion failed",
			"model", g.config.Model,
			"kind", string(invErr.Kind),
			"error", err.Error())
		return "", nil, invErr
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		err := &InvokeError{Kind: KindEmpty, Message: "response contained no generated text"}
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return text, tokenUsage, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}
	if g.client == nil {
		modelInfo.Error = "no API key configured"
		return modelInfo
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}
	return modelInfo
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"generate": g.circuitBreaker.GetStats(),
		"healthy":  g.circuitBreaker.IsHealthy(),
	}
}

// Close implements ModelProvider
func (g *GeminiProvider) Close() error {
	// The genai client holds no resources that need explicit release in
	// single-shot usage.
	return nil
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

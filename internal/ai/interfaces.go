package ai

import "context"

// ModelProvider is the single-shot completion interface the pipeline
// invokes. One prompt in, one text out; providers do not retry or keep
// conversation state.
type ModelProvider interface {
	// Generate sends one completion request. systemInstruction pins the
	// response language. Failures come back as *InvokeError.
	Generate(ctx context.Context, prompt, systemInstruction string) (string, *TokenUsage, error)
	// HasCredential reports whether the provider was configured with a
	// usable credential. Callers route to the fallback generator
	// proactively when it is false, skipping the network round trip.
	HasCredential() bool
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

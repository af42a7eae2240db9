// Package pipeline runs the optimization request flow end to end:
// extract text, classify its language, build prompts, invoke the model
// (or the deterministic fallback), and hand back a packaged result.
// Each run is independent; the pipeline holds no per-request state.
package pipeline

import (
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode/utf8"

	"resumelift/internal/ai"
	"resumelift/internal/analytics"
	"resumelift/internal/errors"
	"resumelift/internal/export"
	"resumelift/internal/extract"
	"resumelift/internal/language"
	"resumelift/internal/observability"
	"resumelift/internal/types"
)

// MinUsableTextLength is the policy floor for extracted text: anything
// shorter after trimming is treated as a failed extraction, not an
// empty resume. The user-facing remedy is re-uploading or enabling OCR.
const MinUsableTextLength = 20

// Pipeline wires the extraction, AI, and analytics layers together.
type Pipeline struct {
	extractor *extract.Extractor
	ai        *ai.Service
	sink      analytics.Sink
	notifier  analytics.Notifier
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// New assembles a pipeline. sink and notifier may be nil, in which case
// the no-op implementations are used and nothing is recorded.
func New(extractor *extract.Extractor, aiService *ai.Service, sink analytics.Sink, notifier analytics.Notifier, logger *errors.Logger) *Pipeline {
	if sink == nil {
		sink = analytics.NopSink{}
	}
	if notifier == nil {
		notifier = analytics.NopNotifier{}
	}
	return &Pipeline{
		extractor: extractor,
		ai:        aiService,
		sink:      sink,
		notifier:  notifier,
		metrics:   &observability.Metrics{},
		logger:    logger,
	}
}

// SetMetrics attaches the metrics instance used to instrument model
// invocations. The server calls this once observability is initialized;
// without it the instruments are nil and recording is skipped.
func (p *Pipeline) SetMetrics(metrics *observability.Metrics) {
	if metrics != nil {
		p.metrics = metrics
	}
}

// Run executes one optimization request. The returned result always
// carries usable text: model output on the happy path, the clearly
// labeled fallback when no credential is configured or the model fails
// with a quota-class error. Non-quota model failures and extraction
// failures surface as errors with no result.
func (p *Pipeline) Run(ctx context.Context, doc types.UploadedDocument, prefs types.Preferences, session *analytics.Session) (types.OptimizationResult, error) {
	start := time.Now()

	text, err := p.extractor.Text(ctx, doc, prefs.UseOCR)
	if err != nil {
		p.recordExtractionFailure(ctx, session, doc, err)
		return types.OptimizationResult{}, err
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinUsableTextLength {
		err := errors.NewExtractionError(
			errors.ErrCodeEmptyText,
			"document yielded no usable text; for scanned PDFs, enable OCR and try again",
			nil,
		).WithContext("name", doc.Name).WithContext("kind", string(doc.Kind))
		p.recordExtractionFailure(ctx, session, doc, err)
		return types.OptimizationResult{}, err
	}

	tag := language.Classify(text)
	req := types.OptimizationRequest{
		ResumeText:      text,
		JobDescription:  prefs.JobDescription,
		Notes:           prefs.Notes,
		FocusTags:       prefs.FocusTags,
		WantCoverLetter: prefs.WantCoverLetter,
	}

	result, err := p.generate(ctx, req, tag, session)
	if err != nil {
		return types.OptimizationResult{}, err
	}

	p.sink.Record(ctx, session, analytics.GenerateEvent{
		Language:       string(tag),
		UsedFallback:   result.UsedFallback,
		HasCoverLetter: result.CoverLetterText != "",
		DurationMS:     time.Since(start).Milliseconds(),
	})
	return result, nil
}

// generate runs the model invocations for one request, routing to the
// fallback generator proactively when no credential is configured and
// reactively on quota-class failures.
func (p *Pipeline) generate(ctx context.Context, req types.OptimizationRequest, tag language.Tag, session *analytics.Session) (types.OptimizationResult, error) {
	if !p.ai.Provider.HasCredential() {
		p.logger.Info("No model credential configured, serving fallback output",
			"language", string(tag))
		return p.fallbackResult(req, tag), nil
	}

	resumePrompt, coverPrompt := p.ai.Builder.Build(req, tag)
	system := p.ai.Builder.SystemInstruction(tag)

	resumeText, err := p.invokeModel(ctx, "optimize_resume", resumePrompt, system)
	if err != nil {
		if ai.IsQuota(err) {
			p.alertQuota(ctx, session, err)
			return p.fallbackResult(req, tag), nil
		}
		return types.OptimizationResult{}, modelError(err)
	}

	result := types.OptimizationResult{
		ResumeText: resumeText,
		Language:   string(tag),
	}
	if coverPrompt == "" {
		return result, nil
	}

	coverText, err := p.invokeModel(ctx, "generate_cover_letter", coverPrompt, system)
	if err != nil {
		if ai.IsQuota(err) {
			// Half-real output would be misleading; the whole result
			// flips to fallback so the disclosure covers both texts.
			p.alertQuota(ctx, session, err)
			return p.fallbackResult(req, tag), nil
		}
		return types.OptimizationResult{}, modelError(err)
	}
	result.CoverLetterText = coverText
	return result, nil
}

// invokeModel runs one model call instrumented with tracing and token
// usage metrics. Instrumentation never alters the call's outcome: with
// uninitialized instruments the call still runs, just unrecorded.
func (p *Pipeline) invokeModel(ctx context.Context, operation, prompt, system string) (string, error) {
	var text string
	err := p.metrics.TrackAIOperationWithTokens(ctx, operation, func(ctx context.Context) *observability.AIOperationResult {
		var usage *ai.TokenUsage
		var genErr error
		text, usage, genErr = p.ai.Provider.Generate(ctx, prompt, system)
		result := &observability.AIOperationResult{Error: genErr}
		if usage != nil {
			result.TokenUsage = &observability.TokenUsage{
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
				TotalTokens:  usage.TotalTokens,
			}
		}
		return result
	})
	return text, err
}

func (p *Pipeline) fallbackResult(req types.OptimizationRequest, tag language.Tag) types.OptimizationResult {
	result := types.OptimizationResult{
		ResumeText:   ai.FallbackResume(req, tag),
		UsedFallback: true,
		Language:     string(tag),
	}
	if req.WantCoverLetter {
		result.CoverLetterText = ai.FallbackCoverLetter(req, tag)
	}
	return result
}

// alertQuota records the quota event and notifies the operator channel
// at most once per session, however many requests fail afterwards.
func (p *Pipeline) alertQuota(ctx context.Context, session *analytics.Session, cause error) {
	p.logger.Warn("Model quota exhausted, serving fallback output",
		"session_id", session.ID, "error", cause.Error())
	session.AlertQuotaOnce(func() {
		p.sink.Record(ctx, session, analytics.QuotaAlertEvent{
			ErrorKind: string(ai.KindQuota),
			Message:   cause.Error(),
		})
		p.notifier.Notify(ctx, analytics.QuotaAlertMessage(session.ID, cause.Error()))
	})
}

func (p *Pipeline) recordExtractionFailure(ctx context.Context, session *analytics.Session, doc types.UploadedDocument, err error) {
	code := ""
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
	}
	p.sink.Record(ctx, session, analytics.ExtractionFailedEvent{
		Kind:      string(doc.Kind),
		ErrorCode: code,
	})
}

// modelError maps an invocation failure to the error code callers and
// the HTTP layer key off. The tagged InvokeError stays reachable
// through Unwrap.
func modelError(err error) error {
	var invErr *ai.InvokeError
	if stderrors.As(err, &invErr) {
		switch invErr.Kind {
		case ai.KindQuota:
			return errors.NewAIError(errors.ErrCodeQuotaExceeded,
				"model quota exhausted", err)
		case ai.KindAuth:
			return errors.NewAIError(errors.ErrCodeMissingAPIKey,
				"model rejected the configured credential", err)
		case ai.KindNetwork:
			return errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
				"model invocation timed out or lost connectivity", err)
		}
	}
	return errors.NewAIError(errors.ErrCodeModelFailed,
		"model invocation failed", err)
}

// ExportDocx packages text as a downloadable Word document with a
// language-appropriate suggested filename and records the download.
func (p *Pipeline) ExportDocx(ctx context.Context, session *analytics.Session, text string, tag language.Tag) (types.Export, error) {
	filename := "optimized_resume.docx"
	if tag == language.Chinese {
		filename = "优化简历.docx"
	}
	exp, err := export.ToDocx(text, filename)
	if err != nil {
		return types.Export{}, err
	}
	p.sink.Record(ctx, session, analytics.ExportEvent{
		Format: "docx",
		Bytes:  len(exp.Bytes),
	})
	return exp, nil
}

// SplitInstructionBlocks splits a job description field on blank lines
// so callers can run one optimization per block. Whitespace-only blocks
// are dropped; text with no blank lines comes back as a single block.
func SplitInstructionBlocks(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	blocks := make([]string, 0, 4)
	for _, block := range strings.Split(normalized, "\n\n") {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			blocks = append(blocks, trimmed)
		}
	}
	return blocks
}

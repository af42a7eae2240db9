package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"resumelift/internal/ai"
	"resumelift/internal/analytics"
	"resumelift/internal/errors"
	"resumelift/internal/extract"
	"resumelift/internal/language"
	"resumelift/internal/observability"
	"resumelift/internal/types"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var testLogger = errors.NewLogger(slog.LevelDebug)

// stubProvider is a scriptable ModelProvider for pipeline tests.
type stubProvider struct {
	text    string
	usage   *ai.TokenUsage
	err     error
	hasCred bool
	calls   int
}

func (s *stubProvider) Generate(_ context.Context, _, _ string) (string, *ai.TokenUsage, error) {
	s.calls++
	if s.err != nil {
		return "", nil, s.err
	}
	return s.text, s.usage, nil
}

func (s *stubProvider) HasCredential() bool { return s.hasCred }
func (s *stubProvider) GetModelInfo(_ context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "stub"}
}
func (s *stubProvider) Close() error { return nil }

// recordSink captures events in memory.
type recordSink struct {
	events []analytics.Event
}

func (r *recordSink) Record(_ context.Context, _ *analytics.Session, event analytics.Event) {
	r.events = append(r.events, event)
}

func (r *recordSink) countType(t analytics.EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type() == t {
			n++
		}
	}
	return n
}

// recordNotifier captures operator alerts.
type recordNotifier struct {
	messages []string
}

func (r *recordNotifier) Notify(_ context.Context, message string) {
	r.messages = append(r.messages, message)
}

func newTestPipeline(t *testing.T, provider ai.ModelProvider) (*Pipeline, *recordSink, *recordNotifier) {
	t.Helper()
	sink := &recordSink{}
	notifier := &recordNotifier{}
	service := &ai.Service{Provider: provider, Builder: ai.NewBuilder(nil)}
	p := New(extract.New(nil, testLogger), service, sink, notifier, testLogger)
	return p, sink, notifier
}

func buildDocxUpload(t *testing.T, paragraphs ...string) types.UploadedDocument {
	t.Helper()
	var docXML strings.Builder
	docXML.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	docXML.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, para := range paragraphs {
		docXML.WriteString(`<w:p><w:r><w:t>`)
		docXML.WriteString(para)
		docXML.WriteString(`</w:t></w:r></w:p>`)
	}
	docXML.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(docXML.String())); err != nil {
		t.Fatalf("failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return types.UploadedDocument{Bytes: buf.Bytes(), Kind: types.KindDOCX, Name: "resume.docx"}
}

func TestRunModelSuccess(t *testing.T) {
	provider := &stubProvider{text: "Polished resume content.", hasCred: true}
	p, sink, notifier := newTestPipeline(t, provider)
	doc := buildDocxUpload(t,
		"Jane Doe, Senior Backend Engineer with ten years of experience.",
		"Led the migration of a payments platform to Go microservices.")

	result, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ResumeText != "Polished resume content." {
		t.Errorf("resume text = %q", result.ResumeText)
	}
	if result.CoverLetterText != "" {
		t.Errorf("cover letter = %q, want empty when not requested", result.CoverLetterText)
	}
	if result.UsedFallback {
		t.Error("UsedFallback = true for a successful model call")
	}
	if result.Language != "en" {
		t.Errorf("language = %q, want en", result.Language)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
	if got := sink.countType(analytics.EventGenerateSuccess); got != 1 {
		t.Errorf("recorded %d generate_success events, want 1", got)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("unexpected operator alerts: %v", notifier.messages)
	}
}

func TestRunProactiveFallbackWithoutCredential(t *testing.T) {
	provider := &stubProvider{text: "should never be returned", hasCred: false}
	p, sink, _ := newTestPipeline(t, provider)
	doc := buildDocxUpload(t,
		"Jane Doe, Senior Backend Engineer with ten years of experience.",
		"Led the migration of a payments platform to Go microservices.")

	result, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.UsedFallback {
		t.Error("UsedFallback = false without a credential")
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times without a credential, want 0", provider.calls)
	}

	// Fallback output is deterministic: a second identical run must
	// produce byte-identical text.
	again, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession())
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if result.ResumeText != again.ResumeText {
		t.Error("fallback output differs between identical runs")
	}
	if !strings.Contains(result.ResumeText, "[DEMO OUTPUT]") {
		t.Errorf("fallback output is not labeled: %q", result.ResumeText[:40])
	}
	if got := sink.countType(analytics.EventGenerateFallback); got != 2 {
		t.Errorf("recorded %d generate_fallback events, want 2", got)
	}
}

func TestRunQuotaFallbackAlertsOncePerSession(t *testing.T) {
	quotaErr := &ai.InvokeError{Kind: ai.KindQuota, Message: "generate failed",
		Cause: context.DeadlineExceeded}
	provider := &stubProvider{err: quotaErr, hasCred: true}
	p, sink, notifier := newTestPipeline(t, provider)
	doc := buildDocxUpload(t,
		"Jane Doe, Senior Backend Engineer with ten years of experience.")
	session := analytics.NewSession()

	for i := 0; i < 4; i++ {
		result, err := p.Run(context.Background(), doc, types.Preferences{}, session)
		if err != nil {
			t.Fatalf("Run %d returned error: %v", i, err)
		}
		if !result.UsedFallback {
			t.Fatalf("Run %d: UsedFallback = false on quota failure", i)
		}
		if result.ResumeText == "" {
			t.Fatalf("Run %d: empty resume text from fallback", i)
		}
	}

	if len(notifier.messages) != 1 {
		t.Errorf("operator alerted %d times in one session, want exactly 1", len(notifier.messages))
	}
	if got := sink.countType(analytics.EventQuotaAlert); got != 1 {
		t.Errorf("recorded %d quota_alert events, want exactly 1", got)
	}
	if got := sink.countType(analytics.EventGenerateFallback); got != 4 {
		t.Errorf("recorded %d generate_fallback events, want 4", got)
	}

	// A fresh session gets its own alert.
	if _, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession()); err != nil {
		t.Fatalf("Run in fresh session returned error: %v", err)
	}
	if len(notifier.messages) != 2 {
		t.Errorf("operator alerted %d times across two sessions, want 2", len(notifier.messages))
	}
}

func TestRunNonQuotaFailureSurfaces(t *testing.T) {
	invokeErr := &ai.InvokeError{Kind: ai.KindNetwork, Message: "generate failed",
		Cause: context.DeadlineExceeded}
	provider := &stubProvider{err: invokeErr, hasCred: true}
	p, _, notifier := newTestPipeline(t, provider)
	doc := buildDocxUpload(t,
		"Jane Doe, Senior Backend Engineer with ten years of experience.")

	_, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession())
	if err == nil {
		t.Fatal("expected error for non-quota model failure")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeNetworkTimeout {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeNetworkTimeout)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("non-quota failure triggered operator alerts: %v", notifier.messages)
	}
}

func TestModelErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantType errors.ErrorType
	}{
		{
			name:     "network failure",
			err:      &ai.InvokeError{Kind: ai.KindNetwork, Message: "dial failed"},
			wantCode: errors.ErrCodeNetworkTimeout,
			wantType: errors.ErrorTypeNetwork,
		},
		{
			name:     "rejected credential",
			err:      &ai.InvokeError{Kind: ai.KindAuth, Message: "401"},
			wantCode: errors.ErrCodeMissingAPIKey,
			wantType: errors.ErrorTypeAI,
		},
		{
			name:     "quota exhaustion",
			err:      &ai.InvokeError{Kind: ai.KindQuota, Message: "resource_exhausted"},
			wantCode: errors.ErrCodeQuotaExceeded,
			wantType: errors.ErrorTypeAI,
		},
		{
			name:     "empty response",
			err:      &ai.InvokeError{Kind: ai.KindEmpty, Message: "no text"},
			wantCode: errors.ErrCodeModelFailed,
			wantType: errors.ErrorTypeAI,
		},
		{
			name:     "untagged failure",
			err:      context.DeadlineExceeded,
			wantCode: errors.ErrCodeModelFailed,
			wantType: errors.ErrorTypeAI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr, ok := modelError(tt.err).(*errors.AppError)
			if !ok {
				t.Fatal("modelError did not return *errors.AppError")
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.Code, tt.wantCode)
			}
			if appErr.Type != tt.wantType {
				t.Errorf("type = %q, want %q", appErr.Type, tt.wantType)
			}
			if !stderrors.Is(appErr, tt.err) {
				t.Error("cause is not reachable through Unwrap")
			}
		})
	}
}

func TestRunCoverLetterRequested(t *testing.T) {
	provider := &stubProvider{text: "generated text", hasCred: true}
	p, _, _ := newTestPipeline(t, provider)
	doc := buildDocxUpload(t,
		"Jane Doe, Senior Backend Engineer with ten years of experience.")

	result, err := p.Run(context.Background(), doc,
		types.Preferences{WantCoverLetter: true}, analytics.NewSession())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.CoverLetterText == "" {
		t.Error("cover letter empty though requested")
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2 (resume + cover letter)", provider.calls)
	}
}

func TestRunRecordsModelInvocationMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("pipeline_test")

	metrics := &observability.Metrics{}
	var err error
	if metrics.AIProcessingTime, err = meter.Float64Histogram("resumelift_ai_processing_duration_seconds"); err != nil {
		t.Fatalf("failed to create histogram: %v", err)
	}
	if metrics.AIRequestCount, err = meter.Int64Counter("resumelift_ai_requests_total"); err != nil {
		t.Fatalf("failed to create counter: %v", err)
	}
	if metrics.AIErrorCount, err = meter.Int64Counter("resumelift_ai_errors_total"); err != nil {
		t.Fatalf("failed to create counter: %v", err)
	}
	if metrics.AITokenUsage, err = meter.Int64Histogram("resumelift_ai_token_usage_total"); err != nil {
		t.Fatalf("failed to create histogram: %v", err)
	}

	provider := &stubProvider{
		text:    "Polished resume content.",
		hasCred: true,
		usage:   &ai.TokenUsage{InputTokens: 120, OutputTokens: 80, TotalTokens: 200},
	}
	p, _, _ := newTestPipeline(t, provider)
	p.SetMetrics(metrics)
	doc := buildDocxUpload(t,
		"Jane Doe, Senior Backend Engineer with ten years of experience.")

	if _, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	if got := counterSum(t, rm, "resumelift_ai_requests_total"); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
	if got := counterSum(t, rm, "resumelift_ai_errors_total"); got != 0 {
		t.Errorf("error count = %d, want 0", got)
	}

	// One invocation records input, output, and total token counts.
	hist, ok := findMetric(rm, "resumelift_ai_token_usage_total")
	if !ok {
		t.Fatal("token usage histogram was never recorded")
	}
	data, ok := hist.Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("token usage data type = %T", hist.Data)
	}
	if len(data.DataPoints) != 3 {
		t.Fatalf("token usage datapoints = %d, want 3 (input, output, total)", len(data.DataPoints))
	}
	var tokens int64
	for _, dp := range data.DataPoints {
		tokens += dp.Sum
	}
	if tokens != 400 {
		t.Errorf("recorded token sum = %d, want 400", tokens)
	}
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func counterSum(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	if !ok {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s data type = %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRunRejectsEmptyText(t *testing.T) {
	provider := &stubProvider{text: "unused", hasCred: true}
	p, sink, _ := newTestPipeline(t, provider)
	doc := buildDocxUpload(t, "too short")

	_, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession())
	if err == nil {
		t.Fatal("expected error for near-empty extraction")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeEmptyText {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeEmptyText)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for unusable text, want 0", provider.calls)
	}
	if got := sink.countType(analytics.EventExtractionFailed); got != 1 {
		t.Errorf("recorded %d extraction_failed events, want 1", got)
	}
}

func TestRunChineseDocumentUsesChineseFallback(t *testing.T) {
	provider := &stubProvider{hasCred: false}
	p, _, _ := newTestPipeline(t, provider)
	doc := buildDocxUpload(t,
		"张三，资深后端工程师，拥有十年大型分布式系统研发经验。",
		"主导支付平台向微服务架构的迁移，保障核心链路稳定性。")

	result, err := p.Run(context.Background(), doc, types.Preferences{}, analytics.NewSession())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Language != "zh" {
		t.Errorf("language = %q, want zh", result.Language)
	}
	if !strings.Contains(result.ResumeText, "【演示输出】") {
		t.Error("Chinese fallback output missing Chinese demo label")
	}
}

func TestExportDocx(t *testing.T) {
	provider := &stubProvider{hasCred: false}
	p, sink, _ := newTestPipeline(t, provider)
	session := analytics.NewSession()

	exp, err := p.ExportDocx(context.Background(), session,
		"First paragraph.\n\nSecond paragraph.", language.English)
	if err != nil {
		t.Fatalf("ExportDocx returned error: %v", err)
	}
	if len(exp.Bytes) == 0 {
		t.Error("export produced no bytes")
	}
	if exp.Filename != "optimized_resume.docx" {
		t.Errorf("filename = %q", exp.Filename)
	}
	if !strings.Contains(exp.MIMEType, "wordprocessingml") {
		t.Errorf("MIME type = %q", exp.MIMEType)
	}

	zhExp, err := p.ExportDocx(context.Background(), session, "内容", language.Chinese)
	if err != nil {
		t.Fatalf("ExportDocx (zh) returned error: %v", err)
	}
	if !strings.HasSuffix(zhExp.Filename, ".docx") {
		t.Errorf("zh filename = %q", zhExp.Filename)
	}

	if got := sink.countType(analytics.EventExportDownload); got != 2 {
		t.Errorf("recorded %d export_download events, want 2", got)
	}
}

func TestSplitInstructionBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single block",
			text: "Backend role at a fintech company.",
			want: []string{"Backend role at a fintech company."},
		},
		{
			name: "two blocks on blank line",
			text: "First job description.\n\nSecond job description.",
			want: []string{"First job description.", "Second job description."},
		},
		{
			name: "windows line endings",
			text: "First.\r\n\r\nSecond.",
			want: []string{"First.", "Second."},
		},
		{
			name: "whitespace-only blocks dropped",
			text: "First.\n\n   \n\nSecond.",
			want: []string{"First.", "Second."},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitInstructionBlocks(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitInstructionBlocks(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

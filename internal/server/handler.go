package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"resumelift/internal/errors"
	"resumelift/internal/extract"
	"resumelift/internal/language"
	"resumelift/internal/observability"
	"resumelift/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createOptimizeHandler wraps the optimize handler with observability.
// The endpoint accepts a multipart form: `resume` (file, required) plus
// the optional fields jobDescription, notes, tags (comma-separated),
// coverLetter and ocr (booleans).
func (s *Server) createOptimizeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelift.api")
		ctx, span := tracer.Start(ctx, "api.optimize")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		doc, prefs, err := s.parseOptimizeRequest(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.String("request.kind", string(doc.Kind)),
			attribute.Int("request.upload_bytes", len(doc.Bytes)),
			attribute.Bool("request.cover_letter", prefs.WantCoverLetter),
			attribute.Bool("request.ocr", prefs.UseOCR),
		)

		metrics := om.GetMetrics()
		result, err := s.Pipeline.Run(ctx, doc, prefs, s.Session)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "pipeline"))
			metrics.RecordBusinessMetric(ctx, "resume_optimized", false,
				attribute.String("error", err.Error()))
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_optimized", true,
			attribute.String("language", result.Language),
			attribute.Bool("used_fallback", result.UsedFallback))
		if result.UsedFallback {
			metrics.RecordBusinessMetric(ctx, "fallback_served", true,
				attribute.String("language", result.Language))
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("response.used_fallback", result.UsedFallback),
			attribute.String("response.language", result.Language),
			attribute.Int("response.resume_length", len(result.ResumeText)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// parseOptimizeRequest decodes the multipart form into an upload and
// preferences. The form parser keeps at most 10 MB in memory; larger
// uploads spill to temp files, and the overall cap is MaxRequestSize.
func (s *Server) parseOptimizeRequest(r *http.Request) (types.UploadedDocument, types.Preferences, error) {
	const memoryLimit = 10 << 20

	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return types.UploadedDocument{}, types.Preferences{}, errors.NewValidationError(
				errors.ErrCodeUploadTooLarge,
				fmt.Sprintf("upload exceeds the %d byte limit", maxBytesErr.Limit), err)
		}
		return types.UploadedDocument{}, types.Preferences{}, errors.NewValidationError(
			errors.ErrCodeInvalidRequest, "request is not a valid multipart form", err)
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		return types.UploadedDocument{}, types.Preferences{}, errors.NewValidationError(
			errors.ErrCodeInvalidRequest, "resume file field is required", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Debug("Failed to close uploaded file", "error", err.Error())
		}
	}()

	kind, ok := extract.KindForFilename(header.Filename)
	if !ok {
		return types.UploadedDocument{}, types.Preferences{}, errors.NewValidationError(
			errors.ErrCodeUnsupportedKind,
			"unsupported file type, upload a .pdf or .docx resume", nil,
		).WithContext("filename", header.Filename)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return types.UploadedDocument{}, types.Preferences{}, errors.NewIOError(
			errors.ErrCodeFileNotReadable, "failed to read uploaded file", err)
	}

	prefs := types.Preferences{
		JobDescription:  r.FormValue("jobDescription"),
		Notes:           r.FormValue("notes"),
		FocusTags:       splitTags(r.FormValue("tags")),
		WantCoverLetter: parseBoolField(r.FormValue("coverLetter")),
		UseOCR:          parseBoolField(r.FormValue("ocr")),
	}

	doc := types.UploadedDocument{
		Bytes: data,
		Kind:  kind,
		Name:  header.Filename,
	}
	return doc, prefs, nil
}

// createExportHandler wraps the export handler with observability. The
// endpoint accepts JSON {text, language} and responds with a DOCX
// attachment.
func (s *Server) createExportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelift.api")
		ctx, span := tracer.Start(ctx, "api.export")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ExportRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			err := fmt.Errorf("missing text")
			span.RecordError(err)
			writeErrorResponse(w, "Missing text", "text field is required", http.StatusBadRequest)
			return
		}

		tag := language.English
		if req.Language == string(language.Chinese) {
			tag = language.Chinese
		}

		exp, err := s.Pipeline.ExportDocx(ctx, s.Session, req.Text, tag)
		if err != nil {
			span.RecordError(err)
			metrics := om.GetMetrics()
			metrics.RecordBusinessMetric(ctx, "export_created", false)
			writeAppError(w, err)
			return
		}

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "export_created", true,
			attribute.Int("export.bytes", len(exp.Bytes)))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("export.bytes", len(exp.Bytes)),
		)

		w.Header().Set("Content-Type", exp.MIMEType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
		if _, err := w.Write(exp.Bytes); err != nil {
			span.RecordError(err)
			s.Logger.Debug("Failed to write export response", "error", err.Error())
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// splitTags parses a comma-separated tag list, dropping empty entries
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseBoolField parses a form boolean, treating absent or malformed
// values as false
func parseBoolField(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// writeAppError maps an application error to an HTTP response. User-
// correctable failures (bad uploads, unusable text) are client errors;
// everything else is a 500.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case errors.ErrCodeUnsupportedKind, errors.ErrCodeInvalidRequest:
		status = http.StatusBadRequest
	case errors.ErrCodeUploadTooLarge:
		status = http.StatusRequestEntityTooLarge
	case errors.ErrCodeMalformedDocument, errors.ErrCodeEmptyText:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeNetworkTimeout:
		status = http.StatusGatewayTimeout
	case errors.ErrCodeMissingAPIKey:
		status = http.StatusBadGateway
	case errors.ErrCodeQuotaExceeded:
		status = http.StatusTooManyRequests
	}
	writeErrorResponse(w, appErr.Message, appErr.Code, status)
}

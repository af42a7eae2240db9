// Package analytics records usage events to an append-only spreadsheet
// and raises once-per-session operator alerts on quota exhaustion.
// Every recording path is fire-and-forget: a broken sink never fails a
// user request.
package analytics

import (
	"encoding/json"
	"fmt"
)

// EventType identifies the kind of usage event being recorded
type EventType string

const (
	EventGenerateSuccess  EventType = "generate_success"
	EventGenerateFallback EventType = "generate_fallback"
	EventExtractionFailed EventType = "extraction_failed"
	EventExportDownload   EventType = "export_download"
	EventQuotaAlert       EventType = "quota_alert"
)

// Event is a closed, typed usage record. Each event kind enumerates its
// recognized fields explicitly instead of carrying a free-form map.
type Event interface {
	Type() EventType
	// Details renders the event payload as a compact JSON object for
	// the spreadsheet's details column.
	Details() string
}

// GenerateEvent records the outcome of an optimization run
type GenerateEvent struct {
	Language       string `json:"lang"`
	UsedFallback   bool   `json:"usedFallback"`
	HasCoverLetter bool   `json:"hasCoverLetter"`
	DurationMS     int64  `json:"durationMs"`
}

func (e GenerateEvent) Type() EventType {
	if e.UsedFallback {
		return EventGenerateFallback
	}
	return EventGenerateSuccess
}

func (e GenerateEvent) Details() string { return marshalDetails(e) }

// ExtractionFailedEvent records an upload the extractor rejected
type ExtractionFailedEvent struct {
	Kind      string `json:"kind"`
	ErrorCode string `json:"errorCode"`
}

func (e ExtractionFailedEvent) Type() EventType { return EventExtractionFailed }
func (e ExtractionFailedEvent) Details() string { return marshalDetails(e) }

// ExportEvent records a document download
type ExportEvent struct {
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}

func (e ExportEvent) Type() EventType { return EventExportDownload }
func (e ExportEvent) Details() string { return marshalDetails(e) }

// QuotaAlertEvent records that the once-per-session operator alert fired
type QuotaAlertEvent struct {
	ErrorKind string `json:"errorKind"`
	Message   string `json:"message"`
}

func (e QuotaAlertEvent) Type() EventType { return EventQuotaAlert }
func (e QuotaAlertEvent) Details() string { return marshalDetails(e) }

func marshalDetails(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"marshalError":%q}`, err.Error())
	}
	return string(data)
}

package types

// DocumentKind identifies the declared format of an uploaded resume
type DocumentKind string

const (
	KindPDF  DocumentKind = "pdf"
	KindDOCX DocumentKind = "docx"
)

// UploadedDocument is the raw upload plus its declared kind. It is owned by
// the request that created it and discarded after extraction.
type UploadedDocument struct {
	Bytes []byte
	Kind  DocumentKind
	Name  string
}

// Preferences carries the user-selected knobs for an optimization run
type Preferences struct {
	JobDescription  string   `json:"jobDescription"`
	Notes           string   `json:"notes"`
	FocusTags       []string `json:"focusTags"`
	WantCoverLetter bool     `json:"wantCoverLetter"`
	UseOCR          bool     `json:"useOcr"`
}

// OptimizationRequest is the immutable input to prompt building and
// generation. ResumeText is the full extracted text, never truncated.
type OptimizationRequest struct {
	ResumeText      string   `json:"resumeText"`
	JobDescription  string   `json:"jobDescription"`
	Notes           string   `json:"notes"`
	FocusTags       []string `json:"focusTags"`
	WantCoverLetter bool     `json:"wantCoverLetter"`
}

// OptimizationResult is the output of one pipeline run. UsedFallback is the
// only sanctioned signal that the text came from the deterministic fallback
// rather than the model; callers must surface it to the user.
type OptimizationResult struct {
	ResumeText      string `json:"resumeText"`
	CoverLetterText string `json:"coverLetterText"`
	UsedFallback    bool   `json:"usedFallback"`
	Language        string `json:"language"`
}

// Export is a packaged document ready for download. The core never writes
// the HTTP response itself; it hands these three values to the caller.
type Export struct {
	Bytes    []byte
	MIMEType string
	Filename string
}

package ai

import (
	"strings"
	"testing"

	"resumelift/internal/language"
	"resumelift/internal/types"
)

func TestFallbackResumeDeterministic(t *testing.T) {
	req := types.OptimizationRequest{
		ResumeText:     "Experienced engineer with ten years in distributed systems.",
		JobDescription: "Backend role at a fintech",
		FocusTags:      []string{"leadership", "impact"},
	}

	first := FallbackResume(req, language.English)
	for i := 0; i < 5; i++ {
		if got := FallbackResume(req, language.English); got != first {
			t.Fatal("FallbackResume is not deterministic across repeated calls")
		}
	}
}

func TestFallbackResumeEchoesInputs(t *testing.T) {
	req := types.OptimizationRequest{
		ResumeText:     "Resume body text here.",
		JobDescription: "Platform engineer position",
		FocusTags:      []string{"quantified results"},
	}

	out := FallbackResume(req, language.English)
	for _, want := range []string{
		"DEMO OUTPUT",
		"quantified results",
		"Platform engineer position",
		"Resume body text here.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("fallback output missing %q", want)
		}
	}
}

func TestFallbackResumeChineseMarkers(t *testing.T) {
	req := types.OptimizationRequest{ResumeText: "简历内容"}
	out := FallbackResume(req, language.Chinese)
	if !strings.Contains(out, "演示输出") {
		t.Error("Chinese fallback missing demo label")
	}
	if !strings.Contains(out, "（未提供）") {
		t.Error("Chinese fallback missing none-provided marker")
	}
	if !strings.Contains(out, "简历内容") {
		t.Error("Chinese fallback missing resume excerpt")
	}
}

func TestFallbackResumeTruncatesExcerpt(t *testing.T) {
	long := strings.Repeat("个", FallbackExcerptLimit+500)
	req := types.OptimizationRequest{ResumeText: long}
	out := FallbackResume(req, language.Chinese)

	if strings.Contains(out, long) {
		t.Error("fallback did not truncate a long resume")
	}
	if !strings.Contains(out, strings.Repeat("个", FallbackExcerptLimit)) {
		t.Error("fallback truncated below the excerpt limit or corrupted runes")
	}
}

func TestFallbackCoverLetter(t *testing.T) {
	req := types.OptimizationRequest{
		ResumeText:      "Resume text",
		JobDescription:  "Staff engineer opening",
		FocusTags:       []string{"mentoring"},
		WantCoverLetter: true,
	}

	out := FallbackCoverLetter(req, language.English)
	if !strings.Contains(out, "DEMO OUTPUT") {
		t.Error("cover letter fallback missing demo label")
	}
	if !strings.Contains(out, "mentoring") {
		t.Error("cover letter fallback missing focus tags")
	}
	if !strings.Contains(out, "Staff engineer opening") {
		t.Error("cover letter fallback missing job description")
	}

	if FallbackCoverLetter(req, language.English) != out {
		t.Error("FallbackCoverLetter is not deterministic")
	}
}

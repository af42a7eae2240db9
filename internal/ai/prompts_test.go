package ai

import (
	"strings"
	"testing"

	"resumelift/internal/language"
	"resumelift/internal/types"
)

func TestBuildContainsResumeVerbatim(t *testing.T) {
	b := NewBuilder(nil)

	resumes := []string{
		"Jane Doe\nSenior Software Engineer\nTen years of backend work.",
		"张伟\n资深软件工程师\n十年分布式系统经验。",
		strings.Repeat("A long resume line with plenty of detail.\n", 200),
	}

	for _, tag := range []language.Tag{language.English, language.Chinese} {
		for _, resume := range resumes {
			req := types.OptimizationRequest{
				ResumeText:      resume,
				JobDescription:  "Backend engineer role",
				FocusTags:       []string{"business impact", "quantified results"},
				WantCoverLetter: true,
			}
			resumePrompt, coverPrompt := b.Build(req, tag)
			if !strings.Contains(resumePrompt, resume) {
				t.Errorf("resume prompt (%s) does not contain resume text verbatim", tag)
			}
			if !strings.Contains(coverPrompt, resume) {
				t.Errorf("cover prompt (%s) does not contain resume text verbatim", tag)
			}
		}
	}
}

func TestBuildCoverLetterOnlyWhenRequested(t *testing.T) {
	b := NewBuilder(nil)
	req := types.OptimizationRequest{
		ResumeText:      "Some resume content",
		WantCoverLetter: false,
	}
	_, coverPrompt := b.Build(req, language.English)
	if coverPrompt != "" {
		t.Errorf("cover prompt = %q, want empty when not requested", coverPrompt)
	}
}

func TestBuildLanguageSelection(t *testing.T) {
	b := NewBuilder(nil)
	req := types.OptimizationRequest{
		ResumeText: "内容",
		FocusTags:  []string{"领导力"},
	}

	zhPrompt, _ := b.Build(req, language.Chinese)
	if !strings.Contains(zhPrompt, "简历优化顾问") {
		t.Error("Chinese prompt did not use the Chinese template")
	}

	enPrompt, _ := b.Build(req, language.English)
	if !strings.Contains(enPrompt, "resume coach") {
		t.Error("English prompt did not use the English template")
	}
}

func TestBuildFocusTagSeparator(t *testing.T) {
	b := NewBuilder(nil)
	req := types.OptimizationRequest{
		ResumeText: "content",
		FocusTags:  []string{"one", "two", "three"},
	}

	enPrompt, _ := b.Build(req, language.English)
	if !strings.Contains(enPrompt, "one, two, three") {
		t.Error("English prompt did not join tags with comma-space")
	}

	zhPrompt, _ := b.Build(req, language.Chinese)
	if !strings.Contains(zhPrompt, "one、two、three") {
		t.Error("Chinese prompt did not join tags with the enumeration comma")
	}
}

func TestBuildEmptyInputsUseMarkers(t *testing.T) {
	b := NewBuilder(nil)
	req := types.OptimizationRequest{ResumeText: "content"}

	enPrompt, _ := b.Build(req, language.English)
	if !strings.Contains(enPrompt, "(none specified)") {
		t.Error("missing focus-tag marker in English prompt")
	}
	if !strings.Contains(enPrompt, "(none provided)") {
		t.Error("missing instruction marker in English prompt")
	}
}

func TestSystemInstruction(t *testing.T) {
	b := NewBuilder(nil)
	if got := b.SystemInstruction(language.English); !strings.Contains(got, "English") {
		t.Errorf("English system instruction = %q", got)
	}
	if got := b.SystemInstruction(language.Chinese); !strings.Contains(got, "中文") {
		t.Errorf("Chinese system instruction = %q", got)
	}
}

package ai

import (
	"fmt"
	"strings"

	"resumelift/internal/config"
	"resumelift/internal/language"
	"resumelift/internal/types"
)

// PromptTemplates holds one user prompt template per language per
// output kind. Each template takes three interpolation slots in order:
// focus-tag list, instruction block, resume text.
type PromptTemplates struct {
	ResumeEN string
	ResumeZH string
	CoverEN  string
	CoverZH  string
}

// SystemInstructions pin the response language regardless of what the
// model might infer from mixed-language content.
type SystemInstructions struct {
	EN string
	ZH string
}

// DefaultPromptTemplates provides the built-in user prompt templates
var DefaultPromptTemplates = PromptTemplates{
	ResumeEN: `You are a professional resume coach. Rewrite and optimize the resume below so it presents the candidate's experience as effectively as possible. Keep every claim truthful to the original content; never invent skills, employers, or achievements.

Emphasis areas: %s

Job description / additional instructions:
%s

Resume:
%s`,

	ResumeZH: `你是一位专业的简历优化顾问。请改写并优化下面的简历，使候选人的经历得到最有效的呈现。所有内容必须忠于原文，不得虚构技能、雇主或成果。

重点方向：%s

职位描述 / 补充要求:
%s

简历原文：
%s`,

	CoverEN: `You are a professional career writer. Draft a concise, compelling cover letter for the candidate whose resume appears below. Ground every statement in the resume; never invent experience.

Emphasis areas: %s

Job description / additional instructions:
%s

Resume:
%s`,

	CoverZH: `你是一位专业的职业文书撰写人。请根据下面的简历，为候选人撰写一封简洁有力的求职信。所有表述必须基于简历内容，不得虚构经历。

重点方向：%s

职位描述 / 补充要求:
%s

简历原文：
%s`,
}

// DefaultSystemInstructions provides the built-in system instructions
var DefaultSystemInstructions = SystemInstructions{
	EN: "Respond entirely in English, matching the language of the input resume.",
	ZH: "请全程使用中文回答，与输入简历的语言保持一致。",
}

// Builder assembles model prompts from an optimization request. Prompt
// text resolution follows a fixed priority: a template loaded from a
// file, then one set in configuration, then the built-in default.
type Builder struct {
	configPrompts *config.PromptTemplates
}

// NewBuilder creates a prompt builder. configPrompts may be nil when no
// overrides are configured.
func NewBuilder(configPrompts *config.PromptTemplates) *Builder {
	return &Builder{configPrompts: configPrompts}
}

// Build produces the resume prompt and, when the request asks for one,
// the cover letter prompt. The resume text is interpolated verbatim and
// unabridged. When WantCoverLetter is unset the second return is the
// empty string.
func (b *Builder) Build(req types.OptimizationRequest, tag language.Tag) (string, string) {
	resumePrompt := fmt.Sprintf(
		b.template(tag, false),
		formatFocusTags(req.FocusTags, tag),
		formatInstructions(req.JobDescription, req.Notes, tag),
		req.ResumeText,
	)

	if !req.WantCoverLetter {
		return resumePrompt, ""
	}

	coverPrompt := fmt.Sprintf(
		b.template(tag, true),
		formatFocusTags(req.FocusTags, tag),
		formatInstructions(req.JobDescription, req.Notes, tag),
		req.ResumeText,
	)
	return resumePrompt, coverPrompt
}

// SystemInstruction returns the language-pinning system instruction for
// the given tag.
func (b *Builder) SystemInstruction(tag language.Tag) string {
	if tag == language.Chinese {
		return DefaultSystemInstructions.ZH
	}
	return DefaultSystemInstructions.EN
}

func (b *Builder) template(tag language.Tag, cover bool) string {
	var fromConfig string
	cfg := b.configPrompts
	if cfg == nil {
		cfg = &config.PromptTemplates{}
	}
	loaded := config.GetLoadedPrompts()

	switch {
	case cover && tag == language.Chinese:
		fromConfig = cfg.CoverZH
		return resolvePrompt(loaded.CoverZH, fromConfig, DefaultPromptTemplates.CoverZH)
	case cover:
		fromConfig = cfg.CoverEN
		return resolvePrompt(loaded.CoverEN, fromConfig, DefaultPromptTemplates.CoverEN)
	case tag == language.Chinese:
		fromConfig = cfg.ResumeZH
		return resolvePrompt(loaded.ResumeZH, fromConfig, DefaultPromptTemplates.ResumeZH)
	default:
		fromConfig = cfg.ResumeEN
		return resolvePrompt(loaded.ResumeEN, fromConfig, DefaultPromptTemplates.ResumeEN)
	}
}

func formatFocusTags(tags []string, lang language.Tag) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if s := strings.TrimSpace(t); s != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		if lang == language.Chinese {
			return "（未指定）"
		}
		return "(none specified)"
	}
	if lang == language.Chinese {
		return strings.Join(clean, "、")
	}
	return strings.Join(clean, ", ")
}

func formatInstructions(jobDescription, notes string, lang language.Tag) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(jobDescription); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(notes); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		if lang == language.Chinese {
			return "（未提供）"
		}
		return "(none provided)"
	}
	return strings.Join(parts, "\n\n")
}

// resolvePrompt selects the prompt string by priority: loaded from a
// file, defined in configuration, built-in default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

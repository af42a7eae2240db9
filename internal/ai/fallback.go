package ai

import (
	"strings"

	"resumelift/internal/language"
	"resumelift/internal/types"
)

// FallbackExcerptLimit caps how much of the original resume the
// placeholder output echoes back, counted in runes so CJK text is never
// cut mid-character.
const FallbackExcerptLimit = 2000

// FallbackResume deterministically synthesizes a placeholder result
// without any network access, for when the model path is unavailable.
// The output is clearly labeled; the UsedFallback flag on the result is
// still the only signal callers may rely on.
func FallbackResume(req types.OptimizationRequest, tag language.Tag) string {
	var b strings.Builder
	if tag == language.Chinese {
		b.WriteString("【演示输出】AI 优化服务当前不可用，以下为占位内容。\n\n")
		b.WriteString("重点方向：")
		b.WriteString(formatFocusTags(req.FocusTags, tag))
		b.WriteString("\n\n职位描述 / 补充要求：\n")
		b.WriteString(formatInstructions(req.JobDescription, req.Notes, tag))
		b.WriteString("\n\n简历原文（节选）：\n")
	} else {
		b.WriteString("[DEMO OUTPUT] The AI optimization service is currently unavailable; this is placeholder content.\n\n")
		b.WriteString("Emphasis areas: ")
		b.WriteString(formatFocusTags(req.FocusTags, tag))
		b.WriteString("\n\nJob description / additional instructions:\n")
		b.WriteString(formatInstructions(req.JobDescription, req.Notes, tag))
		b.WriteString("\n\nOriginal resume (excerpt):\n")
	}
	b.WriteString(truncateRunes(req.ResumeText, FallbackExcerptLimit))
	return b.String()
}

// FallbackCoverLetter is the placeholder counterpart for cover letter
// requests.
func FallbackCoverLetter(req types.OptimizationRequest, tag language.Tag) string {
	var b strings.Builder
	if tag == language.Chinese {
		b.WriteString("【演示输出】AI 求职信生成当前不可用，以下为占位内容。\n\n")
		b.WriteString("求职信将基于以下重点方向撰写：")
		b.WriteString(formatFocusTags(req.FocusTags, tag))
		b.WriteString("\n\n目标职位：\n")
		b.WriteString(formatInstructions(req.JobDescription, req.Notes, tag))
	} else {
		b.WriteString("[DEMO OUTPUT] AI cover letter generation is currently unavailable; this is placeholder content.\n\n")
		b.WriteString("The cover letter would emphasize: ")
		b.WriteString(formatFocusTags(req.FocusTags, tag))
		b.WriteString("\n\nTarget position:\n")
		b.WriteString(formatInstructions(req.JobDescription, req.Notes, tag))
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

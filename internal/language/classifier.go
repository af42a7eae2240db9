// Package language detects whether extracted resume text is Chinese or
// English so prompts and output stay in the document's own language.
package language

// Tag is a two-valued language tag
type Tag string

const (
	Chinese Tag = "zh"
	English Tag = "en"
)

// CJKRatioThreshold is the fraction of CJK Unified Ideographs above which
// text is classified as Chinese. 0.20 matches the behavior the rest of the
// pipeline was tuned against; it is a tunable constant, not a derived value.
const CJKRatioThreshold = 0.20

// Classify returns the language tag for the given text. It is a pure
// function: no I/O, deterministic, and the empty string classifies as
// English (the denominator guard makes the ratio zero).
func Classify(text string) Tag {
	if text == "" {
		return English
	}

	total := 0
	cjk := 0
	for _, r := range text {
		total++
		if r >= 0x4E00 && r <= 0x9FFF {
			cjk++
		}
	}

	if total < 1 {
		total = 1
	}
	if float64(cjk)/float64(total) > CJKRatioThreshold {
		return Chinese
	}
	return English
}

// String returns the tag as a plain string for logging and JSON payloads
func (t Tag) String() string {
	return string(t)
}

package export

import (
	"reflect"
	"strings"
	"testing"

	"resumelift/internal/extract"
)

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "blank line separates paragraphs",
			text: "First paragraph\n\nSecond paragraph",
			want: []string{"First paragraph", "Second paragraph"},
		},
		{
			name: "single newlines join within a paragraph",
			text: "Line one\nLine two\n\nNext block",
			want: []string{"Line one Line two", "Next block"},
		},
		{
			name: "windows line endings",
			text: "First\r\n\r\nSecond",
			want: []string{"First", "Second"},
		},
		{
			name: "whitespace-only blocks dropped",
			text: "First\n\n   \n\nSecond",
			want: []string{"First", "Second"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParagraphs = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToDocxRoundTrip(t *testing.T) {
	text := "Jane Doe\nSenior Software Engineer\n\nTen years of distributed systems work.\n\n负责分布式系统的设计与落地，带领十人团队。"

	exp, err := ToDocx(text, "tailored")
	if err != nil {
		t.Fatalf("ToDocx returned error: %v", err)
	}
	if exp.Filename != "tailored.docx" {
		t.Errorf("filename = %q, want %q", exp.Filename, "tailored.docx")
	}
	if exp.MIMEType != docxMIMEType {
		t.Errorf("mime type = %q", exp.MIMEType)
	}

	got, err := extract.DocxText(exp.Bytes)
	if err != nil {
		t.Fatalf("generated DOCX failed to parse: %v", err)
	}
	for _, want := range []string{
		"Jane Doe Senior Software Engineer",
		"Ten years of distributed systems work.",
		"负责分布式系统的设计与落地，带领十人团队。",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("round-tripped text missing %q; got %q", want, got)
		}
	}
}

func TestToDocxEscapesMarkup(t *testing.T) {
	exp, err := ToDocx("Built <fast> & reliable \"systems\"", "")
	if err != nil {
		t.Fatalf("ToDocx returned error: %v", err)
	}
	if exp.Filename != "optimized_resume.docx" {
		t.Errorf("default filename = %q", exp.Filename)
	}
	got, err := extract.DocxText(exp.Bytes)
	if err != nil {
		t.Fatalf("generated DOCX failed to parse: %v", err)
	}
	if !strings.Contains(got, `Built <fast> & reliable "systems"`) {
		t.Errorf("escaped text did not round-trip; got %q", got)
	}
}

func BenchmarkToDocx(b *testing.B) {
	text := strings.Repeat("Paragraph with a reasonable amount of resume content in it.\n\n", 40)
	for b.Loop() {
		if _, err := ToDocx(text, "bench"); err != nil {
			b.Fatal(err)
		}
	}
}

package language

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Tag
	}{
		{
			name: "all Chinese characters",
			text: "全部中文字符示例文本",
			want: Chinese,
		},
		{
			name: "all English text",
			text: "All English example text",
			want: English,
		},
		{
			name: "empty string",
			text: "",
			want: English,
		},
		{
			name: "mixed text below threshold",
			text: "Senior Software Engineer with experience in 分布式 systems and cloud infrastructure, ten years total",
			want: English,
		},
		{
			name: "mixed text above threshold",
			text: "资深软件工程师 with Kubernetes 经验十年",
			want: Chinese,
		},
		{
			name: "punctuation and digits only",
			text: "123 456 --- !!!",
			want: English,
		},
		{
			name: "japanese kana outside ideograph range",
			text: "こんにちは、よろしくおねがいします",
			want: English,
		},
		{
			name: "kana with enough kanji",
			text: "東京都在住の技術者、十年の経験",
			want: Chinese,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "混合 mixed 文本 text 样本 sample"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("Classify not deterministic: got %q then %q", first, got)
		}
	}
}

func BenchmarkClassify(b *testing.B) {
	text := "Senior engineer 资深工程师 with cloud experience 云计算经验, distributed systems 分布式系统"
	for b.Loop() {
		Classify(text)
	}
}

package security

import (
	"strings"
	"testing"
)

func TestSanitizeRichText_AllowedTags(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{"段落", "<p>手作りのマグカップ</p>", []string{"<p>手作りのマグカップ</p>"}},
		{"リスト", "<ul><li>350ml</li><li>食洗機対応</li></ul>", []string{"<ul>", "<li>350ml</li>", "</ul>"}},
		{"強調", "<strong>限定</strong>と<em>新作</em>", []string{"<strong>限定</strong>", "<em>新作</em>"}},
		{"見出し", "<h3>仕様</h3>", []string{"<h3>仕様</h3>"}},
		{"https画像", `<img src="https://cdn.example.com/mug.png" alt="mug">`, []string{"<img", "https://cdn.example.com/mug.png", `alt="mug"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SanitizeRichText(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("SanitizeRichText(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestSanitizeRichText_RemovesDangerousContent(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name       string
		input      string
		wantAbsent []string
	}{
		{"script", `<p>ok</p><script>alert('xss')</script>`, []string{"<script", "alert"}},
		{"iframe", `<iframe src="https://evil.example.com"></iframe>`, []string{"<iframe", "evil.example.com"}},
		{"style", `<style>body{display:none}</style>`, []string{"<style", "display:none"}},
		{"onイベント属性", `<p onclick="steal()">x</p>`, []string{"onclick", "steal"}},
		{"http画像", `<img src="http://cdn.example.com/a.png">`, []string{"http://cdn.example.com"}},
		{"javascriptリンク", `<a href="javascript:alert(1)">x</a>`, []string{"javascript:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SanitizeRichText(tt.input)
			for _, bad := range tt.wantAbsent {
				if strings.Contains(got, bad) {
					t.Errorf("SanitizeRichText(%q) = %q, must not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}

func TestSanitizeRichText_LinksOpenInNewTab(t *testing.T) {
	s := NewContentSanitizer()
	got := s.SanitizeRichText(`<a href="https://example.com/care">お手入れ</a>`)

	for _, want := range []string{`target="_blank"`, "noopener", "noreferrer"} {
		if !strings.Contains(got, want) {
			t.Errorf("got %q, want to contain %q", got, want)
		}
	}
}

func TestSanitizePlainText_StripsAllTags(t *testing.T) {
	s := NewContentSanitizer()

	got := s.SanitizePlainText(`  <b>Hello</b> <script>alert(1)</script>there  `)
	if strings.Contains(got, "<") {
		t.Errorf("SanitizePlainText returned markup: %q", got)
	}
	if !strings.HasPrefix(got, "Hello") || !strings.HasSuffix(got, "there") {
		t.Errorf("SanitizePlainText = %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("script body must be removed: %q", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()
	input := `<p>説明<a href="https://example.com">リンク</a></p><img src="https://example.com/x.png">`

	once := s.SanitizeRichText(input)
	twice := s.SanitizeRichText(once)
	if once != twice {
		t.Errorf("not idempotent:\n once=%q\ntwice=%q", once, twice)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	s := NewContentSanitizer()
	if got := s.SanitizeRichText(""); got != "" {
		t.Errorf("SanitizeRichText(\"\") = %q", got)
	}
	if got := s.SanitizePlainText(""); got != "" {
		t.Errorf("SanitizePlainText(\"\") = %q", got)
	}
}

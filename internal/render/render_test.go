package render

import (
	"strings"
	"testing"
)

func TestRenderPlaintextEscapes(t *testing.T) {
	r := NewMarkdown()

	out, err := r.Render(`<script>alert("x")</script> & friends`, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script tag escaped, got %q", out)
	}
	if !strings.HasPrefix(out, "<p>") || !strings.HasSuffix(out, "</p>") {
		t.Fatalf("expected paragraph wrapper, got %q", out)
	}
	if !strings.Contains(out, "&amp;") {
		t.Fatalf("expected ampersand escaped, got %q", out)
	}
}

func TestRenderMarkdownBasics(t *testing.T) {
	r := NewMarkdown()

	out, err := r.Render("**bold** and _em_", true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected bold, got %q", out)
	}
	if !strings.Contains(out, "<em>em</em>") {
		t.Fatalf("expected emphasis, got %q", out)
	}
}

func TestRenderMarkdownSanitizesHTML(t *testing.T) {
	r := NewMarkdown()

	out, err := r.Render("hello <script>alert(1)</script> [link](https://example.com)", true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script stripped, got %q", out)
	}
	if !strings.Contains(out, `href="https://example.com"`) {
		t.Fatalf("expected link kept, got %q", out)
	}
	if !strings.Contains(out, `rel="nofollow noreferrer noopener"`) && !strings.Contains(out, "noreferrer") {
		t.Fatalf("expected hardened rel attribute, got %q", out)
	}
}

func TestRenderMarkdownGFMStrikethrough(t *testing.T) {
	r := NewMarkdown()

	out, err := r.Render("~~gone~~", true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<del>gone</del>") {
		t.Fatalf("expected strikethrough, got %q", out)
	}
}

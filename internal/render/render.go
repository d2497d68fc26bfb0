// Package render turns raw comment content into the sanitized HTML stored
// alongside it.
package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer is the content-rendering collaborator of the comment write path.
type Renderer interface {
	// Render converts content to display HTML. With markdown disabled the
	// content is escaped and wrapped in a paragraph instead of parsed.
	Render(content string, markdown bool) (string, error)
}

// Markdown renders GFM markdown and sanitizes the result. User content is
// never trusted: whatever goldmark emits goes through the UGC policy.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdown() *Markdown {
	policy := bluemonday.UGCPolicy()
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				ghtml.WithHardWraps(),
				ghtml.WithXHTML(),
			),
		),
		policy: policy,
	}
}

func (r *Markdown) Render(content string, markdown bool) (string, error) {
	if !markdown {
		return fmt.Sprintf("<p>%s</p>", html.EscapeString(content)), nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return string(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Package markdown renders trusted markdown templates into sanitized HTML
// for outbound email.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// EmailConverter turns markdown into HTML that mail clients accept.
type EmailConverter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewEmailConverter allows links, tables and basic formatting only.
// Images and inline styles are stripped.
func NewEmailConverter() *EmailConverter {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "br", "strong", "em", "del", "ul", "ol", "li", "h1", "h2", "h3", "blockquote", "hr", "code")
	policy.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowURLSchemes("https", "mailto")
	policy.RequireParseableURLs(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &EmailConverter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: policy,
	}
}

// Convert renders body and sanitizes the result.
func (c *EmailConverter) Convert(body string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return c.policy.Sanitize(buf.String()), nil
}

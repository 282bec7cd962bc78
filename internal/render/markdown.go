// Package render turns transcript turns into display-ready payloads.
package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// keep fenced code language hints for client-side highlighting
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	return p
}

// Markdown converts markdown into sanitized HTML. Raw HTML in the source is
// dropped by goldmark and anything left is filtered by the UGC policy.
func Markdown(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return Text(src)
	}
	return policy.Sanitize(buf.String())
}

// Text renders plain text as HTML without interpreting it.
func Text(src string) string {
	return "<p>" + strings.ReplaceAll(html.EscapeString(src), "\n", "<br>") + "</p>"
}

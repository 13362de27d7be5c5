// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/egghead-ai/egghead-tui/internal/model"
)

// =============================================================================
// EMOTICON CONVERSION
// =============================================================================

// emoticonPatterns maps ASCII emoticons to emoji. Patterns are applied in
// order; more specific forms must come before the generic smile/frown.
var emoticonPatterns = []struct {
	re    *regexp.Regexp
	emoji string
}{
	{regexp.MustCompile(`:-?D`), "😄"},
	{regexp.MustCompile(`(?i):-?P`), "😛"},
	{regexp.MustCompile(`(?i):-?O`), "😮"},
	{regexp.MustCompile(`:-?\*`), "😘"},
	{regexp.MustCompile(`(?i):-?b`), "😋"},
	{regexp.MustCompile(`;-?\)`), "😉"},
	{regexp.MustCompile(`B-?\)`), "😎"},
	{regexp.MustCompile(`:-?\)`), "😊"},
	{regexp.MustCompile(`:-?\(`), "😢"},
	{regexp.MustCompile(`:-?\|`), "😐"},
	{regexp.MustCompile(`<3`), "❤️"},
	{regexp.MustCompile(`\bXD\b`), "😆"},
}

// slashEmoticon matches :/ and :-/ without swallowing URL schemes like
// http:// (the colon there is preceded by a word character).
var slashEmoticon = regexp.MustCompile(`(\A|[^\w:]):-?/`)

// ConvertEmoticons rewrites common ASCII emoticons in s to emoji.
func ConvertEmoticons(s string) string {
	for _, p := range emoticonPatterns {
		s = p.re.ReplaceAllString(s, p.emoji)
	}
	return slashEmoticon.ReplaceAllString(s, "${1}😕")
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Renderer formats assistant replies according to the UI configuration.
type Renderer struct {
	convertEmoticons bool
	markdown         *glamour.TermRenderer
}

// New creates a Renderer. When renderMarkdown is true a glamour terminal
// renderer is initialized; if that fails replies fall back to plain text.
func New(renderMarkdown, convertEmoticons bool) *Renderer {
	r := &Renderer{convertEmoticons: convertEmoticons}
	if renderMarkdown {
		tr, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			r.markdown = tr
		}
	}
	return r
}

// Reply formats an assistant reply body for terminal display.
func (r *Renderer) Reply(text string) string {
	if r.convertEmoticons {
		text = ConvertEmoticons(text)
	}
	if r.markdown == nil {
		return text
	}
	rendered, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return rendered
}

// Message formats a full message, appending a reference footer for
// assistant replies that carry references.
func (r *Renderer) Message(msg model.Message) string {
	out := r.Reply(msg.Content)
	if footer := FormatReferences(msg.References); footer != "" {
		out = strings.TrimRight(out, "\n") + "\n\n" + footer + "\n"
	}
	return out
}

// =============================================================================
// REFERENCES
// =============================================================================

// FormatReferences renders the reference footer shown below assistant
// replies. Returns "" when there are no references.
func FormatReferences(refs []model.Reference) string {
	if len(refs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("UC Davis Resources:\n")
	for i, ref := range refs {
		fmt.Fprintf(&b, "  %d. %s", i+1, ref.Title)
		if ref.Type != "" {
			fmt.Fprintf(&b, " (%s)", ref.Type)
		}
		if i < len(refs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

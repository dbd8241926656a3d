package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	markdownRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer
	markdownRendererOnce sync.Once             //nolint:gochecknoglobals // renderer initialization
)

func getMarkdownRenderer() *glamour.TermRenderer {
	markdownRendererOnce.Do(func() {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(DefaultMenuWidth)}
		if HasColorSupport() {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle("notty"))
		}
		r, err := glamour.NewTermRenderer(opts...)
		if err == nil {
			markdownRenderer = r
		}
	})
	return markdownRenderer
}

// RenderMarkdown renders md for the terminal, falling back to the raw text
// when no renderer is available.
func RenderMarkdown(md string) string {
	if r := getMarkdownRenderer(); r != nil {
		if out, err := r.Render(md); err == nil {
			return out
		}
	}
	return md
}

// Title converts a group key such as "desktop-dev" into "Desktop Dev".
func Title(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

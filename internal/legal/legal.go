// Package legal serves the static legal pages as rendered terminal
// markdown.
package legal

import (
	"embed"
	"fmt"

	"github.com/charmbracelet/glamour"
)

//go:embed docs/*.md
var docs embed.FS

// Page names accepted by Render.
const (
	PageTerms   = "terms"
	PagePrivacy = "privacy"
)

var pageFiles = map[string]string{
	PageTerms:   "docs/terms-of-service.md",
	PagePrivacy: "docs/privacy-policy.md",
}

// Render returns a page rendered for the terminal at the given word-wrap
// width.
func Render(page string, width int) (string, error) {
	file, ok := pageFiles[page]
	if !ok {
		return "", fmt.Errorf("unknown legal page %q (want %s or %s)", page, PageTerms, PagePrivacy)
	}

	raw, err := docs.ReadFile(file)
	if err != nil {
		return "", err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(string(raw))
}

// Package pages renders the HTML shown to resource owners.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/edvin/okapi/internal/i18n"
)

const (
	TokenExpired = "token_expired"
	Consent      = "consent"
	Verifier     = "verifier"
	Failure      = "failure"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "templates/*.html"))

// LanguageLink switches the current page to another language.
type LanguageLink struct {
	Lang    string
	Href    string
	Current bool
}

// Data feeds every page. Fields a page does not use stay empty.
type Data struct {
	Msg       i18n.Messages
	Title     string
	SiteName  string
	SiteURL   string
	Languages []LanguageLink

	// consent
	Question    string
	ConsumerURL string
	Action      string
	CSRF        string

	// verifier
	Verifier string
}

// Render executes page into a buffer so a template error never leaves a
// half-written response.
func Render(page string, d Data) ([]byte, error) {
	if d.Title == "" {
		d.Title = title(page, d.Msg)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, page, d); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

func title(page string, m i18n.Messages) string {
	switch page {
	case Consent:
		return m.ConsentTitle
	case Verifier:
		return m.VerifierTitle
	case Failure:
		return m.FailureTitle
	default:
		return m.ExpiredTitle
	}
}

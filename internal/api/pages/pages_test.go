package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/okapi/internal/i18n"
)

func TestRender_AllPages(t *testing.T) {
	for _, page := range []string{TokenExpired, Consent, Verifier, Failure} {
		t.Run(page, func(t *testing.T) {
			out, err := Render(page, Data{Msg: i18n.For("en"), SiteName: "OKAPI", SiteURL: "https://oc.example/"})
			require.NoError(t, err)
			assert.Contains(t, string(out), "<html lang=\"en\">")
			assert.Contains(t, string(out), "https://oc.example/")
		})
	}
}

func TestRender_ConsentEscapesConsumerInput(t *testing.T) {
	out, err := Render(Consent, Data{
		Msg:         i18n.For("en"),
		Question:    `<script>alert(1)</script> wants access`,
		ConsumerURL: "javascript:alert(1)",
		Action:      "?token=T1",
		CSRF:        "tok",
	})
	require.NoError(t, err)
	html := string(out)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, `href="javascript:`)
	assert.Contains(t, html, `name="csrf" value="tok"`)
	assert.Contains(t, html, `value="granted"`)
}

func TestRender_Verifier(t *testing.T) {
	out, err := Render(Verifier, Data{Msg: i18n.For("pl"), Verifier: "abcd1234efgh"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "abcd1234efgh")
	assert.Contains(t, string(out), i18n.For("pl").VerifierTitle)
}

func TestRender_LanguageLinks(t *testing.T) {
	out, err := Render(TokenExpired, Data{
		Msg: i18n.For("de"),
		Languages: []LanguageLink{
			{Lang: "en", Href: "?token=T1&langpref=en"},
			{Lang: "de", Href: "?token=T1&langpref=de", Current: true},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `href="?token=T1&amp;langpref=en"`)
	assert.Contains(t, string(out), `class="current"`)
}

func TestRender_UnknownPage(t *testing.T) {
	_, err := Render("nope", Data{})
	assert.Error(t, err)
}

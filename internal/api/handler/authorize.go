package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/edvin/okapi/internal/api/pages"
	"github.com/edvin/okapi/internal/api/request"
	"github.com/edvin/okapi/internal/api/response"
	"github.com/edvin/okapi/internal/core"
	"github.com/edvin/okapi/internal/i18n"
	"github.com/edvin/okapi/internal/metrics"
	"github.com/edvin/okapi/internal/session"
)

// Site describes the installation the authorize pages belong to.
type Site struct {
	Name string
	URL  string
	Lang string
}

type Authorize struct {
	flow   *core.Flow
	router core.CallbackRouter
	gate   *session.Gate
	site   Site
}

func NewAuthorize(flow *core.Flow, router core.CallbackRouter, gate *session.Gate, site Site) *Authorize {
	return &Authorize{flow: flow, router: router, gate: gate, site: site}
}

// Handle serves both the consent page (GET) and the consent form (POST).
// Every path ends in a redirect or a rendered page.
func (h *Authorize) Handle(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	req, err := request.ParseAuthorize(r)
	lang := i18n.Negotiate(req.Langpref, h.site.Lang)
	if err != nil {
		logger.Debug().Err(err).Msg("unusable authorize request")
		metrics.ObserveFlowOutcome(string(core.StateTokenNotFound), false)
		h.render(w, r, http.StatusOK, pages.TokenExpired, h.pageData(req.Token, lang))
		return
	}

	var owner *int64
	if id, ok := h.gate.CurrentOwner(r); ok {
		owner = &id
	}

	decision := req.Decision
	if decision != nil && (owner == nil || !h.gate.VerifyConsentToken(req.Token, *owner, req.CSRF)) {
		logger.Warn().Msg("consent form without valid csrf token, ignoring decision")
		decision = nil
	}

	out, err := h.flow.Run(r.Context(), core.Request{TokenKey: req.Token, Owner: owner, Decision: decision})
	if err != nil {
		logger.Error().Err(err).Msg("authorize flow failed")
		metrics.ObserveFlowFailure()
		h.render(w, r, http.StatusInternalServerError, pages.Failure, h.pageData(req.Token, lang))
		return
	}
	metrics.ObserveFlowOutcome(string(out.State), out.AutoGranted)
	if out.State == core.StateFinalized {
		logger.Info().
			Str("consumer_key", out.Token.ConsumerKey).
			Int64("user_id", out.Owner).
			Bool("auto_granted", out.AutoGranted).
			Msg("request token authorized")
	}

	resp := h.router.Route(out)
	switch resp.Kind {
	case core.ResponseLogin:
		http.Redirect(w, r, h.gate.LoginRedirect(req.Token, lang), http.StatusFound)
	case core.ResponseRedirect:
		http.Redirect(w, r, resp.RedirectURL, http.StatusFound)
	default:
		d := h.pageData(req.Token, lang)
		switch resp.Page {
		case core.PageConsent:
			d.Question = fmt.Sprintf(d.Msg.ConsentQuestion, out.Consumer.Name, h.site.Name)
			if out.Consumer.URL != nil {
				d.ConsumerURL = *out.Consumer.URL
			}
			d.Action = authorizeQuery(req.Token, lang)
			d.CSRF = h.gate.ConsentToken(req.Token, out.Owner)
			h.render(w, r, http.StatusOK, pages.Consent, d)
		case core.PageVerifier:
			d.Verifier = out.Verifier()
			h.render(w, r, http.StatusOK, pages.Verifier, d)
		default:
			h.render(w, r, http.StatusOK, pages.TokenExpired, d)
		}
	}
}

func (h *Authorize) pageData(tokenKey, lang string) pages.Data {
	d := pages.Data{
		Msg:      i18n.For(lang),
		SiteName: h.site.Name,
		SiteURL:  h.site.URL,
	}
	for _, tag := range i18n.Supported {
		l := tag.String()
		d.Languages = append(d.Languages, pages.LanguageLink{
			Lang:    l,
			Href:    authorizeQuery(tokenKey, l),
			Current: l == lang,
		})
	}
	return d
}

func (h *Authorize) render(w http.ResponseWriter, r *http.Request, status int, page string, d pages.Data) {
	body, err := pages.Render(page, d)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	response.WriteHTML(w, status, body)
}

// authorizeQuery is a same-page link keeping the token and switching language.
func authorizeQuery(tokenKey, lang string) string {
	v := url.Values{}
	v.Set("token", tokenKey)
	v.Set("langpref", lang)
	return "?" + v.Encode()
}

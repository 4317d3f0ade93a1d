package core

import (
	"fmt"
	"net/url"
	"strings"
)

type ResponseKind int

const (
	// ResponseRedirect sends the browser to RedirectURL.
	ResponseRedirect ResponseKind = iota
	// ResponseLogin sends the browser to the site login; the session layer
	// builds the URL.
	ResponseLogin
	// ResponsePage renders Page locally.
	ResponsePage
)

type Page string

const (
	PageTokenNotFound Page = "token_expired"
	PageConsent       Page = "consent"
	PageVerifier      Page = "verifier"
)

// Response is the browser-facing result of a flow outcome.
type Response struct {
	Kind        ResponseKind
	RedirectURL string
	Page        Page
}

// CallbackRouter turns flow outcomes into redirects or local pages. HomeURL
// is where owners land after denying an out-of-band token.
type CallbackRouter struct {
	HomeURL string
}

func (r CallbackRouter) Route(o *Outcome) Response {
	switch o.State {
	case StateAwaitingOwnerLogin:
		return Response{Kind: ResponseLogin}
	case StateAwaitingConsent:
		return Response{Kind: ResponsePage, Page: PageConsent}
	case StateFinalized:
		if o.Token.OutOfBand() {
			return Response{Kind: ResponsePage, Page: PageVerifier}
		}
		target, err := mergeQuery(*o.Token.Callback, [][2]string{
			{"token", o.Token.Key},
			{"verifier", o.Verifier()},
		})
		if err != nil {
			return Response{Kind: ResponsePage, Page: PageVerifier}
		}
		return Response{Kind: ResponseRedirect, RedirectURL: target}
	case StateDenied:
		if o.Token.OutOfBand() {
			return Response{Kind: ResponseRedirect, RedirectURL: r.HomeURL}
		}
		target, err := mergeQuery(*o.Token.Callback, [][2]string{
			{"error", "access_denied"},
		})
		if err != nil {
			return Response{Kind: ResponseRedirect, RedirectURL: r.HomeURL}
		}
		return Response{Kind: ResponseRedirect, RedirectURL: target}
	default:
		return Response{Kind: ResponsePage, Page: PageTokenNotFound}
	}
}

// mergeQuery adds params to the query of raw and keeps everything else,
// fragment included. The existing query is left byte for byte unless one of
// params already appears in it. A well-formed query is then re-encoded with
// the new value replacing the old one; a query Go cannot parse has the
// colliding pairs cut out by hand so the consumer's other pairs survive.
func mergeQuery(raw string, params [][2]string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse callback: %w", err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("callback %q is not absolute", raw)
	}

	existing, perr := url.ParseQuery(u.RawQuery)
	collide := false
	for _, p := range params {
		if _, ok := existing[p[0]]; ok {
			collide = true
		}
	}

	if collide && perr == nil {
		for _, p := range params {
			existing.Set(p[0], p[1])
		}
		u.RawQuery = existing.Encode()
		return u.String(), nil
	}

	q := u.RawQuery
	if collide {
		q = dropKeys(q, params)
	}
	for _, p := range params {
		if q != "" {
			q += "&"
		}
		q += url.QueryEscape(p[0]) + "=" + url.QueryEscape(p[1])
	}
	u.RawQuery = q
	return u.String(), nil
}

// dropKeys removes the pairs of rawQuery whose key is one of params, leaving
// every other pair as written.
func dropKeys(rawQuery string, params [][2]string) string {
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		name, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(name); err == nil {
			name = k
		}
		drop := false
		for _, p := range params {
			if name == p[0] {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, pair)
		}
	}
	return strings.Join(kept, "&")
}

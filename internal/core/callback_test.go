package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/okapi/internal/model"
)

var testRouter = CallbackRouter{HomeURL: "https://opencaching.example/index.php"}

func finalized(callback *string) *Outcome {
	return &Outcome{
		State: StateFinalized,
		Token: &model.Token{Key: "T1", Callback: callback, UserID: ownerPtr(1), Verifier: strPtr("v3rif13rabcd")},
	}
}

func TestCallbackRouter_FinalizedRedirect(t *testing.T) {
	tests := []struct {
		name     string
		callback string
		want     string
	}{
		{"no query", "https://app.example/cb", "https://app.example/cb?token=T1&verifier=v3rif13rabcd"},
		{"existing query kept", "https://app.example/cb?state=a%2Fb&x=1", "https://app.example/cb?state=a%2Fb&x=1&token=T1&verifier=v3rif13rabcd"},
		{"fragment preserved", "https://app.example/cb?x=1#done", "https://app.example/cb?x=1&token=T1&verifier=v3rif13rabcd#done"},
		{"empty query marker", "https://app.example/cb?", "https://app.example/cb?token=T1&verifier=v3rif13rabcd"},
		{"custom scheme", "myapp://oauth/cb", "myapp://oauth/cb?token=T1&verifier=v3rif13rabcd"},
		{"colliding key replaced", "https://app.example/cb?token=stale&z=9", "https://app.example/cb?token=T1&verifier=v3rif13rabcd&z=9"},
		{"semicolon in value kept", "https://app.example/cb?state=a;b", "https://app.example/cb?state=a;b&token=T1&verifier=v3rif13rabcd"},
		{"bad escape kept", "https://app.example/cb?state=100%zz", "https://app.example/cb?state=100%zz&token=T1&verifier=v3rif13rabcd"},
		{"unparseable query with colliding key", "https://app.example/cb?token=stale&state=a;b&verifier=old", "https://app.example/cb?state=a;b&token=T1&verifier=v3rif13rabcd"},
		{"escaped colliding key in unparseable query", "https://app.example/cb?%74oken=stale&state=100%zz", "https://app.example/cb?state=100%zz&token=T1&verifier=v3rif13rabcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testRouter.Route(finalized(strPtr(tt.callback)))
			require.Equal(t, ResponseRedirect, resp.Kind)
			assert.Equal(t, tt.want, resp.RedirectURL)

			u, err := url.Parse(resp.RedirectURL)
			require.NoError(t, err)
			assert.Equal(t, "T1", u.Query().Get("token"))
			assert.Equal(t, "v3rif13rabcd", u.Query().Get("verifier"))
		})
	}
}

func TestCallbackRouter_FinalizedOutOfBand(t *testing.T) {
	for _, cb := range []*string{nil, strPtr("")} {
		resp := testRouter.Route(finalized(cb))
		assert.Equal(t, ResponsePage, resp.Kind)
		assert.Equal(t, PageVerifier, resp.Page)
		assert.Empty(t, resp.RedirectURL)
	}
}

func TestCallbackRouter_FinalizedBadCallbackShowsVerifier(t *testing.T) {
	for _, cb := range []string{"/relative/cb", "http://[::1", "oob"} {
		resp := testRouter.Route(finalized(strPtr(cb)))
		assert.Equal(t, ResponsePage, resp.Kind, cb)
		assert.Equal(t, PageVerifier, resp.Page, cb)
	}
}

func TestCallbackRouter_Denied(t *testing.T) {
	denied := func(cb *string) *Outcome {
		return &Outcome{State: StateDenied, Token: &model.Token{Key: "T3", Callback: cb}}
	}

	resp := testRouter.Route(denied(strPtr("https://app.example/cb")))
	assert.Equal(t, ResponseRedirect, resp.Kind)
	assert.Equal(t, "https://app.example/cb?error=access_denied", resp.RedirectURL)

	resp = testRouter.Route(denied(strPtr("https://app.example/cb?session=9")))
	assert.Equal(t, "https://app.example/cb?session=9&error=access_denied", resp.RedirectURL)

	resp = testRouter.Route(denied(strPtr("https://app.example/cb?state=a;b&error=x")))
	assert.Equal(t, "https://app.example/cb?state=a;b&error=access_denied", resp.RedirectURL)

	resp = testRouter.Route(denied(nil))
	assert.Equal(t, ResponseRedirect, resp.Kind)
	assert.Equal(t, testRouter.HomeURL, resp.RedirectURL)

	resp = testRouter.Route(denied(strPtr("not a url")))
	assert.Equal(t, testRouter.HomeURL, resp.RedirectURL)
}

func TestCallbackRouter_LocalStates(t *testing.T) {
	resp := testRouter.Route(&Outcome{State: StateTokenNotFound})
	assert.Equal(t, ResponsePage, resp.Kind)
	assert.Equal(t, PageTokenNotFound, resp.Page)
	assert.Empty(t, resp.RedirectURL)

	resp = testRouter.Route(&Outcome{State: StateAwaitingConsent, Token: &model.Token{Key: "T"}})
	assert.Equal(t, PageConsent, resp.Page)

	resp = testRouter.Route(&Outcome{State: StateAwaitingOwnerLogin, Token: &model.Token{Key: "T"}})
	assert.Equal(t, ResponseLogin, resp.Kind)
}

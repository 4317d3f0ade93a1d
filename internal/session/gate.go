// Package session reads the site's login session and guards the consent form.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

type Options struct {
	CookieName    string
	Secret        string
	Issuer        string
	LoginURL      string
	AuthorizePath string
	SiteLang      string
}

// Gate answers "who is logged in" from a signed session cookie. It holds no
// per-user state; every call looks only at the request it is given.
type Gate struct {
	cookieName    string
	secret        []byte
	issuer        string
	loginURL      string
	authorizePath string
	siteLang      string
	now           func() time.Time
}

func New(o Options) *Gate {
	return &Gate{
		cookieName:    o.CookieName,
		secret:        []byte(o.Secret),
		issuer:        o.Issuer,
		loginURL:      o.LoginURL,
		authorizePath: o.AuthorizePath,
		siteLang:      o.SiteLang,
		now:           time.Now,
	}
}

// CurrentOwner returns the logged-in user id. A missing, malformed, expired or
// foreign cookie means nobody is logged in.
func (g *Gate) CurrentOwner(r *http.Request) (int64, bool) {
	c, err := r.Cookie(g.cookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	id, err := g.parse(c.Value)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (g *Gate) parse(raw string) (int64, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return 0, fmt.Errorf("parse session: %w", err)
	}
	var claims jwt.Claims
	if err := tok.Claims(g.secret, &claims); err != nil {
		return 0, fmt.Errorf("verify session: %w", err)
	}
	if claims.Expiry == nil {
		return 0, fmt.Errorf("session has no expiry")
	}
	if err := claims.ValidateWithLeeway(jwt.Expected{Issuer: g.issuer, Time: g.now()}, jwt.DefaultLeeway); err != nil {
		return 0, fmt.Errorf("validate session: %w", err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("session subject %q is not a user id", claims.Subject)
	}
	return id, nil
}

// Issue signs a session for userID. The login page of the site does this in
// production; here it serves the dev seed and tests.
func (g *Gate) Issue(userID int64, ttl time.Duration) (string, error) {
	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: g.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}
	now := g.now()
	claims := jwt.Claims{
		Issuer:   g.issuer,
		Subject:  strconv.FormatInt(userID, 10),
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
	}
	raw, err := jwt.Signed(sig).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return raw, nil
}

// LoginRedirect builds the login URL that brings the owner back to the
// authorize page for tokenKey afterwards. langpref is carried into the
// re-entry target only when it differs from the site language.
func (g *Gate) LoginRedirect(tokenKey, langpref string) string {
	target := g.authorizePath + "?token=" + url.QueryEscape(tokenKey)
	if langpref != "" && langpref != g.siteLang {
		target += "&langpref=" + url.QueryEscape(langpref)
	}
	lp := langpref
	if lp == "" {
		lp = g.siteLang
	}
	return g.loginURL + "?target=" + url.QueryEscape(target) + "&langpref=" + url.QueryEscape(lp)
}

// ConsentToken binds a consent form to one token and one owner.
func (g *Gate) ConsentToken(tokenKey string, owner int64) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte("consent\x00" + tokenKey + "\x00" + strconv.FormatInt(owner, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *Gate) VerifyConsentToken(tokenKey string, owner int64, value string) bool {
	if value == "" {
		return false
	}
	return hmac.Equal([]byte(g.ConsentToken(tokenKey, owner)), []byte(value))
}

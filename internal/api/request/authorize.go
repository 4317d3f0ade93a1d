package request

import (
	"fmt"
	"net/http"
	"strings"
)

// Authorize holds the parameters of GET and POST /okapi/apps/authorize.
type Authorize struct {
	Token string `validate:"max=255,token_key"`
	// Langpref keeps only the well-formed entries of the "|"-separated list.
	Langpref string
	// Decision is nil unless the consent form was submitted.
	Decision *string
	CSRF     string
}

// ParseAuthorize reads the token and language preference from the query and,
// on POST, the consent form fields. An invalid token key is an error; the key
// can never match a stored token.
func ParseAuthorize(r *http.Request) (*Authorize, error) {
	q := r.URL.Query()
	a := &Authorize{
		Token:    q.Get("token"),
		Langpref: cleanLangpref(q.Get("langpref")),
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return a, fmt.Errorf("invalid form: %w", err)
		}
		if _, ok := r.PostForm["authorization_result"]; ok {
			d := r.PostForm.Get("authorization_result")
			a.Decision = &d
		}
		a.CSRF = r.PostForm.Get("csrf")
	}

	if err := validate.Struct(a); err != nil {
		return a, fmt.Errorf("validation error: %w", err)
	}
	return a, nil
}

func cleanLangpref(raw string) string {
	if raw == "" {
		return ""
	}
	var kept []string
	for _, part := range strings.Split(raw, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if validate.Var(part, "bcp47_language_tag") == nil {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "|")
}

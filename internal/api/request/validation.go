package request

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Token keys are opaque but always visible ASCII without spaces.
var tokenKeyRegex = regexp.MustCompile(`^[\x21-\x7E]*$`)

func init() {
	validate.RegisterValidation("token_key", func(fl validator.FieldLevel) bool {
		return tokenKeyRegex.MatchString(fl.Field().String())
	})
}

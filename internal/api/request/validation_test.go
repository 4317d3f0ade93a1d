package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenKeyValidation(t *testing.T) {
	valid := []string{"", "T1", "UNKNOWN123", "a-b_c.d~e", "k%2F"}
	for _, v := range valid {
		assert.NoError(t, validate.Var(v, "token_key"), v)
	}

	invalid := []string{"has space", "tab\there", "nul\x00", "café", "line\n"}
	for _, v := range invalid {
		assert.Error(t, validate.Var(v, "token_key"), v)
	}
}

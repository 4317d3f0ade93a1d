package platform

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// verifierAlphabet has 32 symbols so a random byte maps onto it without bias.
const verifierAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"
const verifierLength = 12

func NewID() string {
	return uuid.New().String()
}

// NewVerifier returns a random opaque string handed to the consumer after the
// owner grants a request token. It must be presented at exchange time.
func NewVerifier() (string, error) {
	b := make([]byte, verifierLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verifier: %w", err)
	}
	for i := range b {
		b[i] = verifierAlphabet[b[i]%byte(len(verifierAlphabet))]
	}
	return string(b), nil
}

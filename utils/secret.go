package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const (
	editSecretBytes = 32

	// MinSecretLength and MaxSecretLength bound what a cookie may carry
	// before it is compared against a stored secret.
	MinSecretLength = 32
	MaxSecretLength = 128
)

var randRead = rand.Read

// GenerateEditSecret mints the opaque token that lets a browser edit the
// profile it created.
func GenerateEditSecret() (string, error) {
	buffer := make([]byte, editSecretBytes)
	if _, err := randRead(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// SecretsMatch compares a presented secret with the stored one in constant
// time. Out-of-bound lengths never match.
func SecretsMatch(stored, presented string) bool {
	if len(presented) < MinSecretLength || len(presented) > MaxSecretLength {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

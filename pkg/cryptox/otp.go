package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// oneTimeSecretSize matches the 160-bit secrets recommended by RFC 4226.
const oneTimeSecretSize = 20

// GenerateOneTimeCode returns a numeric code of the given length, derived as
// the first HOTP value of a freshly generated secret. The secret is
// discarded, so the code can only be checked against a stored fingerprint.
func GenerateOneTimeCode(digits otp.Digits) (string, error) {
	secret := make([]byte, oneTimeSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate code secret: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(
		base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret),
		0,
		hotp.ValidateOpts{Digits: digits, Algorithm: otp.AlgorithmSHA1},
	)
	if err != nil {
		return "", fmt.Errorf("failed to derive code: %w", err)
	}
	return code, nil
}

package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
)

// generateOfferCode creates the public redemption token: 4 random bytes,
// hex-encoded to 8 uppercase characters. Uniqueness is enforced by the
// store's index, with bounded regeneration on collision.
func generateOfferCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

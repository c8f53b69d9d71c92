package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// A CodeGenerator derives the opaque verification code stamped into a token
// at issuance time. Both implementations feed the same fields through a
// base64-style transform stripped to a 12-character upper-case alphanumeric
// string, so codes are interchangeable on the wire.
type CodeGenerator interface {
	Generate(code, eventID, userID string, at time.Time) string
}

// DisplayCodeGenerator reproduces the legacy client-side scheme: plain base64
// of the concatenated fields. It is reversible and guessable. Treat the
// result as a display code only, never as an authorization credential.
type DisplayCodeGenerator struct{}

func (DisplayCodeGenerator) Generate(code, eventID, userID string, at time.Time) string {
	combined := fmt.Sprintf("%s-%s-%s-%d", code, eventID, userID, at.UnixMilli())
	return squash(base64.StdEncoding.EncodeToString([]byte(combined)))
}

// HMACCodeGenerator derives the verification code from a SHA-256 HMAC over
// the same fields using a server-held secret, making codes tamper-evident.
type HMACCodeGenerator struct {
	secret []byte
}

func NewHMACCodeGenerator(secret []byte) *HMACCodeGenerator {
	return &HMACCodeGenerator{secret: secret}
}

func (g *HMACCodeGenerator) Generate(code, eventID, userID string, at time.Time) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%s-%s-%s-%d", code, eventID, userID, at.UnixMilli())
	return squash(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// squash strips non-alphanumerics, truncates to 12 characters and
// upper-cases, matching the code format existing scanners expect.
func squash(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 12 {
				break
			}
		}
	}
	return strings.ToUpper(b.String())
}

// Package token implements the portable proof-of-ticket payload embedded in a
// ticket's QR code. The payload is a compact JSON object carried in the `data`
// query parameter of a verification URL, so that scanning a code resolves back
// into the application's own verification page.
//
// Decoding is a syntactic well-formedness filter, not a security boundary:
// authenticity is confirmed by round-tripping ticketId/code/eventId to the
// server, which owns the used/listed state at scan time.
package token

import (
	"encoding/json"
	"net/url"
)

// VerifyPath is the path the verification URL resolves to.
const VerifyPath = "/verify-ticket"

type Token struct {
	TicketID         string `json:"ticketId"`
	EventID          string `json:"eventId"`
	UserID           string `json:"userId"`
	Code             string `json:"code"`
	VerificationCode string `json:"verificationCode"`
	Timestamp        int64  `json:"timestamp"`
}

func (t *Token) wellFormed() bool {
	return t.TicketID != "" && t.EventID != "" && t.UserID != "" && t.VerificationCode != ""
}

// Encode serializes the token and embeds it as the data parameter of a
// verification URL rooted at origin (e.g. "https://gatepass.ng").
func Encode(origin string, t Token) string {
	b, _ := json.Marshal(t)
	return origin + VerifyPath + "?data=" + url.QueryEscape(string(b))
}

// Decode parses a raw data query-parameter value back into a token.
// It returns nil for anything that is not percent-encoded JSON carrying all
// of ticketId, eventId, userId and verificationCode. It never panics and
// never lets a parse error escape: nil means "invalid ticket data", full stop.
func Decode(data string) *Token {
	s, err := url.QueryUnescape(data)
	if err != nil {
		return nil
	}

	var t Token
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil
	}

	if !t.wellFormed() {
		return nil
	}

	return &t
}

// DecodeURL decodes a full verification URL as produced by Encode.
// Convenience for scanner-side callers that hold the whole URL.
func DecodeURL(raw string) *Token {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}

	data := u.Query().Get("data")
	if data == "" {
		return nil
	}

	// Query() already unescaped the parameter once.
	var t Token
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return nil
	}

	if !t.wellFormed() {
		return nil
	}

	return &t
}

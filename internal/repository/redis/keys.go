package redis

import "fmt"

const ns = "gatepass:v1"

func KeyEventSummary(eventID string) string {
	return fmt.Sprintf("%s:event:%s:summary", ns, eventID)
}

func KeyEventResale(eventID string) string {
	return fmt.Sprintf("%s:event:%s:resale", ns, eventID)
}

func KeyBankCodes() string {
	return ns + ":banks:codes"
}

// KeyRateLimit is the limiter prefix for one rate-limited scope; the caller
// key (e.g. "ip:1.2.3.4") is appended by the limiter itself.
func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelTicketsChanged() string {
	return ns + ":tickets:changed"
}

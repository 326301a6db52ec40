package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set when not allowed
}

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so an identifier containing ':' cannot address another bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// ProfileKey is the bucket key of an authenticated requester. The external id
// is hashed so BSN and KVK numbers never reach the store.
func ProfileKey(p domain.Profile) string {
	sum := sha256.Sum256([]byte(p.ID))
	return "profile:" + SanitizeKeySegment(p.Type.String()) + ":" + hex.EncodeToString(sum[:16])
}

// IPKey is the bucket key of an unauthenticated client.
func IPKey(ip string) string {
	return "ip:" + SanitizeKeySegment(ip)
}

package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Action names the audited operation.
type Action string

const (
	ActionDocumentDownloaded Action = "document_downloaded"
)

// Event is emitted from the cases service to capture document access. It
// carries no raw upstream keys or citizen identifiers, only hashes.
type Event struct {
	Action          Action    `json:"action"`
	ProfileType     string    `json:"profileType"`
	ProfileIDHash   string    `json:"profileIdHash"`
	DocumentKeyHash string    `json:"documentKeyHash"`
	RequestID       string    `json:"requestId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// HashKey returns the hex SHA-256 of an identifier.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

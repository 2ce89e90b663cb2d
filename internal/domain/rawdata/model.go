package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Payload is one platform response kept verbatim for replay and audit.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	LeagueID    string
	Season      int
	PayloadJSON []byte
	PayloadHash string
	FetchedAt   time.Time
}

func HashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

package journal

import (
	"crypto/rand"
	"encoding/hex"
)

// NewTradeID generates a random 16-byte hex identifier for rows created
// through the API (external writers supply their own ids)
func NewTradeID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}

package lockmgr

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	idBytes = 32 // 256 bit
)

// generateOwnerID creates a new unique owner ID.
// The owner ID is the hex form of 256 random bits, a plain string survives
// every codec unchanged.
func generateOwnerID() (string, error) {
	randomBytes := make([]byte, idBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(randomBytes), nil
}

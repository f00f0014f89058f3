package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// userKeyBytes keeps object keys short; 128 bits of the digest is plenty to
// keep users apart.
const userKeyBytes = 16

// HashUserKey returns a stable, path-safe directory name for a user ID so
// object keys never embed raw identity claims.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte("user:" + userID))
	return hex.EncodeToString(sum[:userKeyBytes])
}

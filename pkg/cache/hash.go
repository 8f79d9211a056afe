package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Sheet bytes are keyed by it, so
// an unchanged export maps to the same parsed data and frames.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "prefix:" followed by the hash of the JSON-encoded parts.
func hashKey(prefix string, parts ...any) string {
	raw, _ := json.Marshal(parts)
	return prefix + ":" + Hash(raw)
}

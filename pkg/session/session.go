// Package session derives stable session identifiers from source URLs.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prefix keeps durable collection names visually distinct from scratch ones.
const Prefix = "web-"

// Derive maps a source URL to a deterministic, collision-resistant
// identifier. The same URL always names the same collection, which is what
// makes re-ingestion idempotent. Hex keeps the name valid in the vector
// store namespace.
func Derive(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return Prefix + hex.EncodeToString(sum[:])
}

package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest returns the hex-encoded SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// Aggregate derives a single digest from an ordered sequence of per-shard
// hex checksums. Missing, reordered or corrupted shards change the result
// without rehashing raw bytes.
func Aggregate(checksums []string) string {
	var b strings.Builder
	for _, c := range checksums {
		b.WriteString(c)
		b.WriteString("\n")
	}

	return Digest([]byte(b.String()))
}

// IsHexDigest reports whether s is a well-formed hex-encoded 256-bit digest.
func IsHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}

	_, err := hex.DecodeString(s)
	return err == nil
}

// Package uniquekey derives partition keys for the email uniqueness table.
package uniquekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Email computes a hash-distributed partition key for an email claim.
// Scoping by record type keeps school and student claims independent, and
// hashing spreads the claims evenly across partitions.
func Email(recordType, email string) string {
	data := fmt.Sprintf("%s#%s", recordType, email)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}

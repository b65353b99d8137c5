package lifecalc

import (
	"crypto/sha256"
	"encoding/binary"
)

// AnonymousIdentity is the identity seed used when no user or device
// identifier is available. Uniqueness is sacrificed for availability: all
// fully-anonymous guests with the same birth date share a prediction.
const AnonymousIdentity = "anonymous"

// SeedValue derives the deterministic seed in [0,1) from identity, birth
// date (YYYY-MM-DD), and the deployment salt. SHA-256 keeps the value
// bit-for-bit reproducible across processes and languages, which is what
// makes the countdown stable across sessions and devices. Changing the salt
// changes every prediction.
func SeedValue(identity, dob, salt string) float64 {
	// Top 53 bits of the digest prefix divide exactly into a float64
	// mantissa, so the normalization has no rounding ambiguity.
	return float64(seedPrefix(identity, dob, salt)>>11) / (1 << 53)
}

// seedSource derives the PRNG seed from the same digest prefix.
func seedSource(identity, dob, salt string) int64 {
	return int64(seedPrefix(identity, dob, salt))
}

func seedPrefix(identity, dob, salt string) uint64 {
	if identity == "" {
		identity = AnonymousIdentity
	}
	h := sha256.New()
	h.Write([]byte(identity))
	h.Write([]byte(dob))
	h.Write([]byte(salt))
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

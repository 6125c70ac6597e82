package identity

import (
	"encoding/hex"

	"github.com/JoshDFN/cleardeck/core"
)

// DevIdentity derives a deterministic development identity from a seed
// string. A 64-character hex seed is treated as a secp256k1 private
// key, the local toolchain's default identity kind; any other seed
// derives an ed25519 key from its bytes.
func DevIdentity(seed string) (core.Identity, error) {
	if len(seed) == 64 {
		if _, err := hex.DecodeString(seed); err == nil {
			return Secp256k1FromHex(seed)
		}
	}
	return Ed25519FromSeed(seed)
}

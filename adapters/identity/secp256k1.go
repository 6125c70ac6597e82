package identity

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/JoshDFN/cleardeck/core"
)

// Secp256k1Identity signs with a secp256k1 key, the default identity
// kind of the local development toolchain.
type Secp256k1Identity struct {
	key *ecdsa.PrivateKey
}

// NewSecp256k1Identity generates a fresh random identity.
func NewSecp256k1Identity() (*Secp256k1Identity, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Secp256k1Identity{key: key}, nil
}

// Secp256k1FromHex loads an identity from a hex-encoded private key.
func Secp256k1FromHex(hexKey string) (*Secp256k1Identity, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid secp256k1 key: %w", err)
	}
	return &Secp256k1Identity{key: key}, nil
}

// Principal returns the self-authenticating principal of the key.
func (i *Secp256k1Identity) Principal() core.Principal {
	return core.SelfAuthenticatingPrincipal(i.PublicKey())
}

// PublicKey returns the uncompressed public key encoding.
func (i *Secp256k1Identity) PublicKey() []byte {
	return crypto.FromECDSAPub(&i.key.PublicKey)
}

// Sign signs the SHA-256 digest of msg.
func (i *Secp256k1Identity) Sign(msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := crypto.Sign(digest[:], i.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	return sig, nil
}

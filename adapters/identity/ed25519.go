// Package identity provides the concrete identity kinds the session
// layer binds transports to: raw ed25519 session keys, secp256k1 keys,
// and provider-delegated identities.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"fmt"

	"github.com/JoshDFN/cleardeck/core"
)

const seedLength = ed25519.SeedSize

// Ed25519Identity signs with a raw ed25519 key. Used both for
// throwaway session keys and for deterministic dev identities.
type Ed25519Identity struct {
	priv   ed25519.PrivateKey
	pubDER []byte
}

// NewEd25519Identity generates a fresh random identity.
func NewEd25519Identity() (*Ed25519Identity, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return fromPrivate(priv)
}

// Ed25519FromSeed derives a deterministic identity from a seed string.
// The seed is right-padded with '0' to the key size and truncated, so
// the same seed always yields the same principal.
func Ed25519FromSeed(seed string) (*Ed25519Identity, error) {
	padded := make([]byte, seedLength)
	for i := range padded {
		padded[i] = '0'
	}
	copy(padded, seed)
	return fromPrivate(ed25519.NewKeyFromSeed(padded))
}

// Ed25519FromKey wraps an existing private key.
func Ed25519FromKey(priv ed25519.PrivateKey) (*Ed25519Identity, error) {
	return fromPrivate(priv)
}

func fromPrivate(priv ed25519.PrivateKey) (*Ed25519Identity, error) {
	der, err := x509.MarshalPKIXPublicKey(priv.Public())
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	return &Ed25519Identity{priv: priv, pubDER: der}, nil
}

// Principal returns the self-authenticating principal of the key.
func (i *Ed25519Identity) Principal() core.Principal {
	return core.SelfAuthenticatingPrincipal(i.pubDER)
}

// PublicKey returns the DER-encoded public key.
func (i *Ed25519Identity) PublicKey() []byte {
	out := make([]byte, len(i.pubDER))
	copy(out, i.pubDER)
	return out
}

// Sign signs msg with the private key.
func (i *Ed25519Identity) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(i.priv, msg), nil
}

// Key exposes the private key for session persistence.
func (i *Ed25519Identity) Key() ed25519.PrivateKey {
	return i.priv
}

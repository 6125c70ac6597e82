package identity

import (
	"github.com/JoshDFN/cleardeck/core"
)

// Delegated signs with a locally held session key under a
// provider-issued delegation chain. The principal is that of the chain
// root (the user's long-lived key), not the session key.
type Delegated struct {
	session core.Identity
	rootKey []byte
	chain   *core.DelegationChain
}

var _ core.DelegatedIdentity = (*Delegated)(nil)

// NewDelegated wraps a session key identity with the provider-issued
// chain rooted at rootKey.
func NewDelegated(session core.Identity, rootKey []byte, chain *core.DelegationChain) *Delegated {
	return &Delegated{session: session, rootKey: rootKey, chain: chain}
}

// Principal returns the principal of the chain's root key.
func (d *Delegated) Principal() core.Principal {
	return core.SelfAuthenticatingPrincipal(d.rootKey)
}

// PublicKey returns the root public key the chain is anchored to.
func (d *Delegated) PublicKey() []byte {
	out := make([]byte, len(d.rootKey))
	copy(out, d.rootKey)
	return out
}

// Sign signs with the delegated session key.
func (d *Delegated) Sign(msg []byte) ([]byte, error) {
	return d.session.Sign(msg)
}

// Delegation returns the chain attached to this identity.
func (d *Delegated) Delegation() *core.DelegationChain {
	return d.chain
}

// SessionIdentity exposes the underlying session key identity for
// persistence.
func (d *Delegated) SessionIdentity() core.Identity {
	return d.session
}

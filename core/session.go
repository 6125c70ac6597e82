package core

// Identity signs outgoing requests and derives the caller principal.
// Implementations hold key material and are passed by reference only.
type Identity interface {
	// Principal returns the principal this identity authenticates as.
	Principal() Principal

	// PublicKey returns the encoded public key of the identity.
	PublicKey() []byte

	// Sign signs an arbitrary message with the identity's key.
	Sign(msg []byte) ([]byte, error)
}

// DelegatedIdentity is implemented by identities that carry a
// provider-issued delegation chain on top of a local session key.
type DelegatedIdentity interface {
	Identity

	// Delegation returns the chain attached to the identity, or nil.
	Delegation() *DelegationChain
}

// Session is the authenticated identity bound to this client.
// Exactly one Session exists per process; it is owned by the auth
// service and mutated only through its operations.
type Session struct {
	Authenticated bool     // Principal and Identity are set when true
	Principal     string   // textual principal of the authenticated user
	Identity      Identity // nil when unauthenticated
	Loading       bool     // true only while Init is probing the provider
}

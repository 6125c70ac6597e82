package core

import "time"

// Delegation is a single time-bounded link of a signing capability
// chain issued by the identity provider.
type Delegation struct {
	// PubKey is the delegated session public key.
	PubKey []byte

	// Expiration is when this link stops being honored.
	Expiration time.Time
}

// DelegationChain is the ordered capability chain attached to a
// delegated identity. It is produced by the provider during login and
// read-only afterwards.
type DelegationChain struct {
	Delegations []Delegation
}

// Valid reports whether the chain is still usable at now.
//
// Only the first link's expiration gates validity: the earliest-expiring
// link is the conservative bound, matching the provider's own chain
// construction. An absent or empty chain cannot be disproven and
// therefore counts as valid; callers should log that case.
func (c *DelegationChain) Valid(now time.Time) bool {
	if c == nil || len(c.Delegations) == 0 {
		return true
	}
	return !c.Delegations[0].Expiration.Before(now)
}

// TimeRemaining returns how long the chain stays valid from now.
// Zero chain duration means no expiry is known.
func (c *DelegationChain) TimeRemaining(now time.Time) time.Duration {
	if c == nil || len(c.Delegations) == 0 {
		return 0
	}
	remaining := c.Delegations[0].Expiration.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

package ports

import (
	"context"
	"time"

	"github.com/JoshDFN/cleardeck/core"
)

// LoginRequest parameterizes the provider's interactive login flow.
type LoginRequest struct {
	// ProviderURL is the interactive login page to open.
	ProviderURL string

	// MaxValidity bounds the lifetime of the issued delegation.
	MaxValidity time.Duration
}

// IdentityProvider is the external identity authority. Implementations
// own persistence of the delegated session between process runs.
type IdentityProvider interface {
	// IsAuthenticated reports whether a stored session exists.
	// Expiry of that session is advisory here; validity is the
	// caller's concern.
	IsAuthenticated(ctx context.Context) (bool, error)

	// Identity returns the stored delegated identity.
	Identity(ctx context.Context) (core.Identity, error)

	// Login runs the interactive flow and returns the new identity.
	Login(ctx context.Context, req LoginRequest) (core.Identity, error)

	// Logout discards the stored session at the provider.
	Logout(ctx context.Context) error
}

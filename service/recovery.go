package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/JoshDFN/cleardeck/core"
)

// SessionExpiredMessage is shown to the user after a forced logout.
const SessionExpiredMessage = "Your session has expired. Please log in again."

// NotifyFunc receives a user-facing message when a session is forcibly
// ended.
type NotifyFunc func(message string)

// SessionEnder force-ends the local session. *AuthService implements it.
type SessionEnder interface {
	Logout(ctx context.Context)
}

// Guard runs op and converts signature/delegation failures into a
// forced logout followed by core.ErrSessionExpired; the original error
// is discarded. Any other failure is returned unchanged. Guard wraps
// any remote call, balance queries included, since credential expiry
// can surface from any remote-service response.
func Guard[T any](ctx context.Context, sessions SessionEnder, op func(ctx context.Context) (T, error), notify NotifyFunc) (T, error) {
	out, err := op(ctx)
	if err == nil {
		return out, nil
	}
	if !core.IsSignatureError(err) {
		return out, err
	}

	log.Error().Err(err).Msg("signature verification failed, forcing logout")
	sessions.Logout(ctx)
	if notify != nil {
		notify(SessionExpiredMessage)
	}

	var zero T
	return zero, core.ErrSessionExpired
}

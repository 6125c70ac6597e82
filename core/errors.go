package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthClientNotInitialized is returned when login is attempted before Init
	ErrAuthClientNotInitialized = errors.New("auth client not initialized")

	// ErrNotAuthenticated is returned when an identity-bound operation has no identity
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEnvironmentNotAllowed is returned when a dev-only operation runs outside local development
	ErrEnvironmentNotAllowed = errors.New("dev login only available in local development")

	// ErrSessionExpired is returned after a forced logout caused by a signature failure
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNetworkTimeout is returned when a dispatched call outlives its deadline
	ErrNetworkTimeout = errors.New("network request timed out")

	// ErrBuildTimeInvocation is returned by the build-time dispatcher stub
	ErrBuildTimeInvocation = errors.New("service invoked while building")

	// ErrSessionNotFound is returned by session stores when no record exists
	ErrSessionNotFound = errors.New("session not found")

	// ErrWalletNotConnected is returned when a wallet operation requires a connection
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrNoAccountsReturned is returned when the signer connects but lists no accounts
	ErrNoAccountsReturned = errors.New("no accounts returned from wallet")

	// ErrWalletConnectionTimeout is returned when the signer connection times out
	ErrWalletConnectionTimeout = errors.New("wallet connection timed out, please try again")

	// ErrWalletPopupClosed is returned when the signer popup is closed mid-connect
	ErrWalletPopupClosed = errors.New("wallet popup was closed, please try again")

	// ErrWalletConnectionRejected is returned when the user declines the connection
	ErrWalletConnectionRejected = errors.New("wallet connection was rejected, please approve the connection")

	// ErrApprovalRejected is returned when the user declines a spending approval
	ErrApprovalRejected = errors.New("approval was rejected in wallet")

	// ErrApprovalTimeout is returned when a spending approval times out
	ErrApprovalTimeout = errors.New("approval timed out, please try again")

	// ErrInsufficientFunds is returned when the wallet balance cannot cover an approval
	ErrInsufficientFunds = errors.New("insufficient balance in wallet")
)

// TransportError is a status-bearing failure reported by the HTTP
// agent. The status uses HTTP semantics so error classification can
// distinguish boundary rejections from connectivity failures.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error %d: %s", e.Status, e.Message)
}

package ports

import (
	"context"

	"github.com/JoshDFN/cleardeck/core"
)

// ConnectRequest parameterizes an interactive signer connection.
type ConnectRequest struct {
	// URL is the signer's interactive sign page.
	URL string

	// Host is the boundary endpoint the signer should submit through.
	Host string

	// Kind selects the capability profile to connect with.
	Kind core.WalletKind

	// OnDisconnect fires when the signer ends the session on its side.
	OnDisconnect func()
}

// ApproveRequest asks the signer to authorize a spender to pull funds
// from the connected account, up to Amount minor units.
type ApproveRequest struct {
	LedgerID string
	Spender  core.Principal
	Amount   uint64
}

// WalletSigner opens interactive sessions with the user-custodied
// signing wallet.
type WalletSigner interface {
	Connect(ctx context.Context, req ConnectRequest) (SignerConn, error)
}

// SignerConn is one live signer session.
type SignerConn interface {
	// Accounts lists the spendable accounts the user granted access to.
	Accounts(ctx context.Context) ([]core.Account, error)

	// Approve runs the interactive approval and returns the ledger
	// block height it landed at. A nil height means the signer
	// answered without one; zero is a legitimate height.
	Approve(ctx context.Context, req ApproveRequest) (*uint64, error)

	// Disconnect tears down the session.
	Disconnect(ctx context.Context) error
}

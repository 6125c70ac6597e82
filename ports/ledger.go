package ports

import (
	"context"

	"github.com/JoshDFN/cleardeck/core"
)

// TransferArgs moves funds from the caller's account to a receiver.
type TransferArgs struct {
	To     core.Account
	Amount uint64
}

// ApproveArgs authorizes a spender against the caller's account.
type ApproveArgs struct {
	Spender core.Account
	Amount  uint64
}

// Ledger exposes the balance and allowance operations of a single
// asset's ledger service.
type Ledger interface {
	// BalanceOf queries the balance of an owner in minor units.
	BalanceOf(ctx context.Context, owner core.Principal) (uint64, error)

	// Transfer submits a transfer and returns its block height.
	Transfer(ctx context.Context, args TransferArgs) (uint64, error)

	// Approve submits an allowance and returns its block height.
	Approve(ctx context.Context, args ApproveArgs) (uint64, error)
}

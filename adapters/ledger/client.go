// Package ledger implements the ledger query surface on top of the
// call dispatcher. Requests travel as a small JSON envelope; the
// ledgers' own wire schema (optional/variant encodings) is out of
// scope here and handled service-side.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

// Client talks to one asset's ledger service.
type Client struct {
	caller   ports.Caller
	ledgerID string
}

var _ ports.Ledger = (*Client)(nil)

// NewClient creates a ledger client for the given service identifier.
// Balance queries need no identity, so callers doing only reads should
// pass a dispatcher resolving anonymous transports.
func NewClient(caller ports.Caller, ledgerID string) *Client {
	return &Client{caller: caller, ledgerID: ledgerID}
}

type account struct {
	Owner      string `json:"owner"`
	Subaccount []byte `json:"subaccount,omitempty"`
}

// BalanceOf queries the owner's balance in minor units.
func (c *Client) BalanceOf(ctx context.Context, owner core.Principal) (uint64, error) {
	args, err := json.Marshal(account{Owner: owner.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to encode balance query: %w", err)
	}

	out, err := c.caller.Query(ctx, c.ledgerID, "icrc1_balance_of", args)
	if err != nil {
		return 0, err
	}

	var balance uint64
	if err := json.Unmarshal(out, &balance); err != nil {
		return 0, fmt.Errorf("malformed balance response: %w", err)
	}
	return balance, nil
}

// Transfer submits a transfer and returns its block height.
func (c *Client) Transfer(ctx context.Context, args ports.TransferArgs) (uint64, error) {
	req := struct {
		To     account `json:"to"`
		Amount uint64  `json:"amount"`
	}{
		To: account{
			Owner:      args.To.Owner.String(),
			Subaccount: args.To.Subaccount,
		},
		Amount: args.Amount,
	}
	return c.submit(ctx, "icrc1_transfer", req)
}

// Approve submits an allowance and returns its block height.
func (c *Client) Approve(ctx context.Context, args ports.ApproveArgs) (uint64, error) {
	req := struct {
		Spender account `json:"spender"`
		Amount  uint64  `json:"amount"`
	}{
		Spender: account{
			Owner:      args.Spender.Owner.String(),
			Subaccount: args.Spender.Subaccount,
		},
		Amount: args.Amount,
	}
	return c.submit(ctx, "icrc2_approve", req)
}

func (c *Client) submit(ctx context.Context, method string, req any) (uint64, error) {
	args, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", method, err)
	}

	out, err := c.caller.Call(ctx, c.ledgerID, method, args)
	if err != nil {
		return 0, err
	}

	var height uint64
	if err := json.Unmarshal(out, &height); err != nil {
		return 0, fmt.Errorf("malformed %s response: %w", method, err)
	}
	return height, nil
}

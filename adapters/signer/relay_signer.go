// Package signer implements the wallet signer port against a relay
// service that bridges to the user's interactive signing wallet. The
// relay holds the interactive session; this client drives it over a
// small JSON API and blocks until the user acts or the deadline fires.
package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

// Relay opens wallet sessions through a signer relay endpoint.
type Relay struct {
	client *http.Client
	log    zerolog.Logger
}

var _ ports.WalletSigner = (*Relay)(nil)

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithRelayHTTPClient overrides the shared HTTP client.
func WithRelayHTTPClient(client *http.Client) RelayOption {
	return func(r *Relay) { r.client = client }
}

// WithRelayLogger sets the relay logger.
func WithRelayLogger(logger zerolog.Logger) RelayOption {
	return func(r *Relay) { r.log = logger }
}

// NewRelay creates a signer relay client. The default client carries no
// timeout of its own; connect and approve deadlines come from the
// caller's context.
func NewRelay(opts ...RelayOption) *Relay {
	r := &Relay{
		client: &http.Client{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type connectPayload struct {
	Host string `json:"host"`
	Kind string `json:"kind"`
}

type sessionPayload struct {
	SessionID string `json:"session_id"`
	Principal string `json:"principal"`
}

// Connect opens an interactive session. The call blocks on the relay
// until the user completes or dismisses the wallet prompt.
func (r *Relay) Connect(ctx context.Context, req ports.ConnectRequest) (ports.SignerConn, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("signer url is required")
	}

	var session sessionPayload
	err := r.post(ctx, req.URL+"/api/v1/sessions", connectPayload{
		Host: req.Host,
		Kind: req.Kind.String(),
	}, &session)
	if err != nil {
		return nil, err
	}

	principal, err := core.PrincipalFromText(session.Principal)
	if err != nil {
		return nil, fmt.Errorf("malformed signer principal: %w", err)
	}

	r.log.Debug().
		Str("session_id", session.SessionID).
		Str("principal", principal.String()).
		Msg("signer session opened")

	return &relayConn{
		relay:        r,
		base:         req.URL,
		sessionID:    session.SessionID,
		principal:    principal,
		onDisconnect: req.OnDisconnect,
	}, nil
}

// relayConn is one live relay-held wallet session.
type relayConn struct {
	relay        *Relay
	base         string
	sessionID    string
	principal    core.Principal
	onDisconnect func()
}

var _ ports.SignerConn = (*relayConn)(nil)

func (c *relayConn) Accounts(ctx context.Context) ([]core.Account, error) {
	var out struct {
		Accounts []struct {
			Owner      string `json:"owner"`
			Subaccount []byte `json:"subaccount,omitempty"`
		} `json:"accounts"`
	}
	url := fmt.Sprintf("%s/api/v1/sessions/%s/accounts", c.base, c.sessionID)
	if err := c.relay.post(ctx, url, nil, &out); err != nil {
		return nil, err
	}

	accounts := make([]core.Account, 0, len(out.Accounts))
	for _, a := range out.Accounts {
		owner, err := core.PrincipalFromText(a.Owner)
		if err != nil {
			return nil, fmt.Errorf("malformed account owner: %w", err)
		}
		accounts = append(accounts, core.Account{Owner: owner, Subaccount: a.Subaccount})
	}
	return accounts, nil
}

func (c *relayConn) Approve(ctx context.Context, req ports.ApproveRequest) (*uint64, error) {
	var out struct {
		BlockHeight *uint64 `json:"block_height"`
	}
	url := fmt.Sprintf("%s/api/v1/sessions/%s/approve", c.base, c.sessionID)
	err := c.relay.post(ctx, url, struct {
		LedgerID string `json:"ledger_id"`
		Spender  string `json:"spender"`
		Amount   uint64 `json:"amount"`
	}{
		LedgerID: req.LedgerID,
		Spender:  req.Spender.String(),
		Amount:   req.Amount,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.BlockHeight, nil
}

func (c *relayConn) Disconnect(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/v1/sessions/%s", c.base, c.sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build disconnect request: %w", err)
	}

	resp, err := c.relay.client.Do(req)
	if err != nil {
		return fmt.Errorf("disconnect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &core.TransportError{Status: resp.StatusCode, Message: string(body)}
	}
	if c.onDisconnect != nil {
		c.onDisconnect()
	}
	return nil
}

func (r *Relay) post(ctx context.Context, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("signer request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read signer response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &core.TransportError{Status: resp.StatusCode, Message: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed signer response: %w", err)
	}
	return nil
}

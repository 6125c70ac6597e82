package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

const (
	// WalletConnectTimeout bounds the interactive signer connection.
	WalletConnectTimeout = 120 * time.Second

	// WalletApproveTimeout bounds an interactive approval, which waits
	// on user confirmation and therefore gets a longer leash.
	WalletApproveTimeout = 300 * time.Second
)

// WalletService drives the external signing-wallet state machine:
// Disconnected -> Connecting -> Connected -> Approving -> Connected,
// with every state able to fall back to Disconnected. It is the single
// writer of the WalletConnection; the mutex is never held across a
// signer or ledger call.
type WalletService struct {
	cfg    core.Config
	signer ports.WalletSigner
	icp    ports.Ledger
	ckbtc  ports.Ledger
	log    zerolog.Logger

	mu     sync.Mutex
	conn   core.WalletConnection
	active ports.SignerConn
}

// WalletOption configures optional wallet service collaborators.
type WalletOption func(*WalletService)

// WithWalletLogger sets the service logger.
func WithWalletLogger(logger zerolog.Logger) WalletOption {
	return func(s *WalletService) { s.log = logger }
}

// NewWalletService creates the wallet service. The ledgers should be
// backed by an anonymous transport; balance reads need no identity.
func NewWalletService(cfg core.Config, signer ports.WalletSigner, icp, ckbtc ports.Ledger, opts ...WalletOption) *WalletService {
	s := &WalletService{
		cfg:    cfg,
		signer: signer,
		icp:    icp,
		ckbtc:  ckbtc,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens an interactive signer session with the requested
// capability profile. On success the connection state is set and a
// balance refresh is triggered; refresh failures never revert a fresh
// connection. On failure the categorized error is stored and the state
// returns to Disconnected.
func (s *WalletService) Connect(ctx context.Context, kind core.WalletKind) error {
	s.mu.Lock()
	if s.conn.Status == core.WalletConnecting || s.conn.Status == core.WalletApproving {
		status := s.conn.Status
		s.mu.Unlock()
		return fmt.Errorf("wallet busy: %s", status)
	}
	prior := s.active
	s.active = nil
	s.conn = core.WalletConnection{Status: core.WalletConnecting}
	s.mu.Unlock()

	if prior != nil {
		if err := prior.Disconnect(ctx); err != nil {
			s.log.Warn().Err(err).Msg("error during disconnect")
		}
	}

	cctx, cancel := context.WithTimeout(ctx, WalletConnectTimeout)
	defer cancel()

	s.log.Info().Str("kind", kind.String()).Str("url", s.cfg.WalletSignerURL).Msg("connecting wallet")

	conn, err := s.signer.Connect(cctx, ports.ConnectRequest{
		URL:          s.cfg.WalletSignerURL,
		Host:         s.cfg.APIHost,
		Kind:         kind,
		OnDisconnect: s.onSignerDisconnect,
	})
	if err != nil {
		return s.failConnect(classifyConnectError(err))
	}

	accounts, err := conn.Accounts(cctx)
	if err != nil {
		s.teardown(ctx, conn)
		return s.failConnect(classifyConnectError(err))
	}
	if len(accounts) == 0 {
		s.teardown(ctx, conn)
		return s.failConnect(core.ErrNoAccountsReturned)
	}

	s.mu.Lock()
	s.active = conn
	s.conn = core.WalletConnection{
		Status:    core.WalletConnected,
		Kind:      kind,
		Principal: accounts[0].Owner.String(),
		Accounts:  accounts,
	}
	s.mu.Unlock()

	s.log.Info().
		Str("principal", accounts[0].Owner.String()).
		Int("accounts", len(accounts)).
		Msg("wallet connected")

	if err := s.RefreshBalances(ctx); err != nil {
		s.log.Warn().Err(err).Msg("initial balance refresh failed")
	}
	return nil
}

// Approve asks the signer to authorize spender to pull amount minor
// units of asset. If the connected capability profile does not match
// the asset, the wallet is disconnected and reconnected with the
// matching one first. The connection survives a failed approval.
func (s *WalletService) Approve(ctx context.Context, asset core.Asset, amount uint64, spender core.Principal) (uint64, error) {
	s.mu.Lock()
	status, kind := s.conn.Status, s.conn.Kind
	s.mu.Unlock()
	if status != core.WalletConnected {
		return 0, core.ErrWalletNotConnected
	}

	// Approvals never execute against a mismatched capability profile.
	if required := asset.RequiredWalletKind(); kind != required {
		s.log.Info().
			Str("have", kind.String()).
			Str("need", required.String()).
			Msg("wallet kind mismatch, reconnecting")
		s.Disconnect(ctx)
		if err := s.Connect(ctx, required); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	conn := s.active
	if conn == nil {
		s.mu.Unlock()
		return 0, core.ErrWalletNotConnected
	}
	s.conn.Status = core.WalletApproving
	s.mu.Unlock()

	actx, cancel := context.WithTimeout(ctx, WalletApproveTimeout)
	defer cancel()

	s.log.Info().
		Str("asset", asset.String()).
		Uint64("amount", amount).
		Str("spender", spender.String()).
		Msg("requesting approval")

	height, err := conn.Approve(actx, ports.ApproveRequest{
		LedgerID: s.cfg.LedgerID(asset),
		Spender:  spender,
		Amount:   amount,
	})

	s.mu.Lock()
	if s.conn.Status == core.WalletApproving {
		s.conn.Status = core.WalletConnected
	}
	s.mu.Unlock()

	if err != nil {
		classified := classifyApprovalError(err)
		s.log.Error().Err(err).Msg("approval failed")
		return 0, classified
	}

	if height == nil {
		// Zero is a legitimate block height; only absence is ambiguous.
		s.log.Warn().Msg("approval returned without a block height")
		height = new(uint64)
	}

	s.log.Info().Uint64("block_height", *height).Msg("approval successful")

	if err := s.RefreshBalances(ctx); err != nil {
		s.log.Warn().Err(err).Msg("balance refresh after approval failed")
	}
	return *height, nil
}

// Disconnect tears the signer session down best-effort and always
// resets the connection state, regardless of the teardown outcome.
func (s *WalletService) Disconnect(ctx context.Context) {
	s.mu.Lock()
	conn := s.active
	s.active = nil
	s.mu.Unlock()

	if conn != nil {
		if err := conn.Disconnect(ctx); err != nil {
			s.log.Warn().Err(err).Msg("error during disconnect")
		}
	}

	s.mu.Lock()
	s.conn = core.WalletConnection{}
	s.mu.Unlock()
}

// RefreshBalances queries both ledgers for the connected principal.
// No-op while disconnected. On failure the loading flag clears but
// previously cached balances stay; stale beats absent.
func (s *WalletService) RefreshBalances(ctx context.Context) error {
	s.mu.Lock()
	if s.conn.Status != core.WalletConnected && s.conn.Status != core.WalletApproving {
		s.mu.Unlock()
		return nil
	}
	if len(s.conn.Accounts) == 0 {
		s.mu.Unlock()
		return nil
	}
	owner := s.conn.Accounts[0].Owner
	s.conn.LoadingBalances = true
	s.mu.Unlock()

	icp, err := s.icp.BalanceOf(ctx, owner)
	if err != nil {
		s.clearLoading()
		return fmt.Errorf("failed to fetch icp balance: %w", err)
	}
	ckbtc, err := s.ckbtc.BalanceOf(ctx, owner)
	if err != nil {
		s.clearLoading()
		return fmt.Errorf("failed to fetch ckbtc balance: %w", err)
	}

	s.mu.Lock()
	s.conn.ICPBalance = &icp
	s.conn.CKBTCBalance = &ckbtc
	s.conn.LoadingBalances = false
	s.mu.Unlock()

	s.log.Debug().Uint64("icp", icp).Uint64("ckbtc", ckbtc).Msg("wallet balances refreshed")
	return nil
}

// Connection returns a snapshot of the wallet connection state.
func (s *WalletService) Connection() core.WalletConnection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.conn
	out.Accounts = slices.Clone(s.conn.Accounts)
	if s.conn.ICPBalance != nil {
		v := *s.conn.ICPBalance
		out.ICPBalance = &v
	}
	if s.conn.CKBTCBalance != nil {
		v := *s.conn.CKBTCBalance
		out.CKBTCBalance = &v
	}
	return out
}

// onSignerDisconnect handles a signer-initiated disconnect.
func (s *WalletService) onSignerDisconnect() {
	s.mu.Lock()
	s.active = nil
	s.conn = core.WalletConnection{}
	s.mu.Unlock()
	s.log.Info().Msg("wallet disconnected by signer")
}

func (s *WalletService) failConnect(err error) error {
	s.mu.Lock()
	s.active = nil
	s.conn = core.WalletConnection{Err: err.Error()}
	s.mu.Unlock()
	s.log.Error().Err(err).Msg("wallet connection failed")
	return err
}

func (s *WalletService) teardown(ctx context.Context, conn ports.SignerConn) {
	if err := conn.Disconnect(ctx); err != nil {
		s.log.Warn().Err(err).Msg("error during disconnect")
	}
}

func (s *WalletService) clearLoading() {
	s.mu.Lock()
	s.conn.LoadingBalances = false
	s.mu.Unlock()
}

// classifyConnectError maps the signer's free-text connection failure
// onto a stable category. Unrecognized text passes through under a
// generic message.
func classifyConnectError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return fmt.Errorf("%w: %v", core.ErrWalletConnectionTimeout, err)
	case strings.Contains(msg, "closed"):
		return fmt.Errorf("%w: %v", core.ErrWalletPopupClosed, err)
	case strings.Contains(msg, "rejected"):
		return fmt.Errorf("%w: %v", core.ErrWalletConnectionRejected, err)
	default:
		return fmt.Errorf("failed to connect wallet: %w", err)
	}
}

// classifyApprovalError maps the signer's free-text approval failure
// onto a stable category.
func classifyApprovalError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rejected"), strings.Contains(msg, "denied"):
		return fmt.Errorf("%w: %v", core.ErrApprovalRejected, err)
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return fmt.Errorf("%w: %v", core.ErrApprovalTimeout, err)
	case strings.Contains(msg, "insufficient"):
		return fmt.Errorf("%w: %v", core.ErrInsufficientFunds, err)
	default:
		return fmt.Errorf("failed to approve spending: %w", err)
	}
}

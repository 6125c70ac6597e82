package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

type fakeLedger struct {
	balance uint64
	err     error
	calls   int
}

func (f *fakeLedger) BalanceOf(ctx context.Context, owner core.Principal) (uint64, error) {
	f.calls++
	return f.balance, f.err
}

func (f *fakeLedger) Transfer(ctx context.Context, args ports.TransferArgs) (uint64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeLedger) Approve(ctx context.Context, args ports.ApproveArgs) (uint64, error) {
	return 0, errors.New("not implemented")
}

type fakeConn struct {
	accounts      []core.Account
	accountsErr   error
	approveHeight *uint64
	approveErr    error
	disconnectErr error

	approveCalls    int
	disconnectCalls int
	lastApprove     ports.ApproveRequest
}

func (f *fakeConn) Accounts(ctx context.Context) ([]core.Account, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeConn) Approve(ctx context.Context, req ports.ApproveRequest) (*uint64, error) {
	f.approveCalls++
	f.lastApprove = req
	return f.approveHeight, f.approveErr
}

func (f *fakeConn) Disconnect(ctx context.Context) error {
	f.disconnectCalls++
	return f.disconnectErr
}

type scriptedSigner struct {
	conns        []*fakeConn
	err          error
	connectCalls int
	lastKind     core.WalletKind
}

func (s *scriptedSigner) Connect(ctx context.Context, req ports.ConnectRequest) (ports.SignerConn, error) {
	s.connectCalls++
	s.lastKind = req.Kind
	if s.err != nil {
		return nil, s.err
	}
	conn := s.conns[0]
	if len(s.conns) > 1 {
		s.conns = s.conns[1:]
	}
	return conn, nil
}

func walletAccount() core.Account {
	return core.Account{Owner: core.SelfAuthenticatingPrincipal([]byte("wallet-owner"))}
}

func newWallet(signer ports.WalletSigner, icp, ckbtc ports.Ledger) *WalletService {
	return NewWalletService(core.DefaultConfig(core.NetworkMainnet), signer, icp, ckbtc)
}

func TestWalletConnectSuccess(t *testing.T) {
	conn := &fakeConn{accounts: []core.Account{walletAccount()}}
	signer := &scriptedSigner{conns: []*fakeConn{conn}}
	icp := &fakeLedger{balance: 250_000_000}
	ckbtc := &fakeLedger{balance: 7_000}
	svc := newWallet(signer, icp, ckbtc)

	err := svc.Connect(context.Background(), core.WalletKindICP)
	require.NoError(t, err)

	state := svc.Connection()
	assert.Equal(t, core.WalletConnected, state.Status)
	assert.Equal(t, core.WalletKindICP, state.Kind)
	assert.Equal(t, walletAccount().Owner.String(), state.Principal)
	require.NotNil(t, state.ICPBalance)
	assert.EqualValues(t, 250_000_000, *state.ICPBalance)
	require.NotNil(t, state.CKBTCBalance)
	assert.EqualValues(t, 7_000, *state.CKBTCBalance)
	assert.False(t, state.LoadingBalances)
}

func TestWalletConnectErrorCategories(t *testing.T) {
	tests := []struct {
		name      string
		signerErr error
		want      error
	}{
		{"timeout text", errors.New("connection timed out"), core.ErrWalletConnectionTimeout},
		{"deadline", context.DeadlineExceeded, core.ErrWalletConnectionTimeout},
		{"popup closed", errors.New("window was closed by user"), core.ErrWalletPopupClosed},
		{"rejected", errors.New("request rejected"), core.ErrWalletConnectionRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newWallet(&scriptedSigner{err: tt.signerErr}, &fakeLedger{}, &fakeLedger{})

			err := svc.Connect(context.Background(), core.WalletKindICP)
			assert.ErrorIs(t, err, tt.want)

			state := svc.Connection()
			assert.Equal(t, core.WalletDisconnected, state.Status)
			assert.NotEmpty(t, state.Err)
		})
	}
}

func TestWalletConnectUnrecognizedErrorPassesThrough(t *testing.T) {
	signerErr := errors.New("relay exploded")
	svc := newWallet(&scriptedSigner{err: signerErr}, &fakeLedger{}, &fakeLedger{})

	err := svc.Connect(context.Background(), core.WalletKindICP)
	assert.ErrorIs(t, err, signerErr)
	assert.Equal(t, core.WalletDisconnected, svc.Connection().Status)
}

func TestWalletConnectNoAccounts(t *testing.T) {
	conn := &fakeConn{}
	svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}}, &fakeLedger{}, &fakeLedger{})

	err := svc.Connect(context.Background(), core.WalletKindICP)
	assert.ErrorIs(t, err, core.ErrNoAccountsReturned)
	assert.Equal(t, 1, conn.disconnectCalls, "half-open session must be torn down")
	assert.Equal(t, core.WalletDisconnected, svc.Connection().Status)
}

func TestWalletConnectSurvivesFailedInitialRefresh(t *testing.T) {
	conn := &fakeConn{accounts: []core.Account{walletAccount()}}
	svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}},
		&fakeLedger{err: errors.New("ledger unreachable")}, &fakeLedger{})

	err := svc.Connect(context.Background(), core.WalletKindICP)
	require.NoError(t, err, "balance refresh failure must not revert a fresh connection")

	state := svc.Connection()
	assert.Equal(t, core.WalletConnected, state.Status)
	assert.Nil(t, state.ICPBalance)
	assert.False(t, state.LoadingBalances)
}

func TestApproveRequiresConnection(t *testing.T) {
	svc := newWallet(&scriptedSigner{}, &fakeLedger{}, &fakeLedger{})

	_, err := svc.Approve(context.Background(), core.AssetICP, 100, core.AnonymousPrincipal())
	assert.ErrorIs(t, err, core.ErrWalletNotConnected)
}

func TestApproveSuccess(t *testing.T) {
	height := uint64(42)
	conn := &fakeConn{accounts: []core.Account{walletAccount()}, approveHeight: &height}
	svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}}, &fakeLedger{}, &fakeLedger{})
	require.NoError(t, svc.Connect(context.Background(), core.WalletKindICP))

	spender := core.SelfAuthenticatingPrincipal([]byte("treasury"))
	got, err := svc.Approve(context.Background(), core.AssetICP, 1_000, spender)
	require.NoError(t, err)

	assert.EqualValues(t, 42, got)
	assert.Equal(t, core.MainnetICPLedger, conn.lastApprove.LedgerID)
	assert.True(t, spender.Equal(conn.lastApprove.Spender))
	assert.Equal(t, core.WalletConnected, svc.Connection().Status)
}

func TestApproveMissingBlockHeightTreatedAsZero(t *testing.T) {
	conn := &fakeConn{accounts: []core.Account{walletAccount()}}
	svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}}, &fakeLedger{}, &fakeLedger{})
	require.NoError(t, svc.Connect(context.Background(), core.WalletKindICP))

	got, err := svc.Approve(context.Background(), core.AssetICP, 1_000, core.AnonymousPrincipal())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestApproveKindMismatchReconnects(t *testing.T) {
	icpConn := &fakeConn{accounts: []core.Account{walletAccount()}}
	icrcConn := &fakeConn{accounts: []core.Account{walletAccount()}}
	signer := &scriptedSigner{conns: []*fakeConn{icpConn, icrcConn}}
	svc := newWallet(signer, &fakeLedger{}, &fakeLedger{})
	require.NoError(t, svc.Connect(context.Background(), core.WalletKindICP))

	_, err := svc.Approve(context.Background(), core.AssetCKBTC, 500, core.AnonymousPrincipal())
	require.NoError(t, err)

	assert.Equal(t, 1, icpConn.disconnectCalls, "mismatched session ends exactly once")
	assert.Zero(t, icpConn.approveCalls, "approval never runs on the mismatched session")
	assert.Equal(t, 2, signer.connectCalls)
	assert.Equal(t, core.WalletKindICRC, signer.lastKind)
	assert.Equal(t, 1, icrcConn.approveCalls)
	assert.Equal(t, core.MainnetCKBTCLedger, icrcConn.lastApprove.LedgerID)
	assert.Equal(t, core.WalletKindICRC, svc.Connection().Kind)
}

func TestApproveFailureCategoriesKeepConnection(t *testing.T) {
	tests := []struct {
		name       string
		approveErr error
		want       error
	}{
		{"rejected", errors.New("user rejected the request"), core.ErrApprovalRejected},
		{"denied", errors.New("access denied"), core.ErrApprovalRejected},
		{"timeout", context.DeadlineExceeded, core.ErrApprovalTimeout},
		{"insufficient", errors.New("insufficient funds on account"), core.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{accounts: []core.Account{walletAccount()}, approveErr: tt.approveErr}
			svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}}, &fakeLedger{}, &fakeLedger{})
			require.NoError(t, svc.Connect(context.Background(), core.WalletKindICP))

			_, err := svc.Approve(context.Background(), core.AssetICP, 100, core.AnonymousPrincipal())
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, core.WalletConnected, svc.Connection().Status,
				"connection survives a failed approval")
		})
	}
}

func TestDisconnectAlwaysResets(t *testing.T) {
	conn := &fakeConn{
		accounts:      []core.Account{walletAccount()},
		disconnectErr: errors.New("relay already gone"),
	}
	svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}}, &fakeLedger{}, &fakeLedger{})
	require.NoError(t, svc.Connect(context.Background(), core.WalletKindICP))

	svc.Disconnect(context.Background())

	state := svc.Connection()
	assert.Equal(t, core.WalletDisconnected, state.Status)
	assert.Equal(t, core.WalletKindNone, state.Kind)
	assert.Empty(t, state.Principal)
	assert.Nil(t, state.ICPBalance)
	assert.Equal(t, 1, conn.disconnectCalls)
}

func TestRefreshBalancesKeepsStaleOnFailure(t *testing.T) {
	conn := &fakeConn{accounts: []core.Account{walletAccount()}}
	icp := &fakeLedger{balance: 100}
	ckbtc := &fakeLedger{balance: 200}
	svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}}, icp, ckbtc)
	require.NoError(t, svc.Connect(context.Background(), core.WalletKindICP))

	icp.err = errors.New("ledger unreachable")
	err := svc.RefreshBalances(context.Background())
	assert.Error(t, err)

	state := svc.Connection()
	require.NotNil(t, state.ICPBalance)
	assert.EqualValues(t, 100, *state.ICPBalance, "stale balance beats absent")
	require.NotNil(t, state.CKBTCBalance)
	assert.EqualValues(t, 200, *state.CKBTCBalance)
	assert.False(t, state.LoadingBalances)
}

func TestRefreshBalancesNoopWhileDisconnected(t *testing.T) {
	icp := &fakeLedger{}
	svc := newWallet(&scriptedSigner{}, icp, &fakeLedger{})

	err := svc.RefreshBalances(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, icp.calls)
}

func TestConnectionSnapshotIsIsolated(t *testing.T) {
	conn := &fakeConn{accounts: []core.Account{walletAccount()}}
	svc := newWallet(&scriptedSigner{conns: []*fakeConn{conn}}, &fakeLedger{balance: 5}, &fakeLedger{})
	require.NoError(t, svc.Connect(context.Background(), core.WalletKindICP))

	snap := svc.Connection()
	*snap.ICPBalance = 999
	snap.Accounts[0] = core.Account{}

	fresh := svc.Connection()
	assert.EqualValues(t, 5, *fresh.ICPBalance)
	assert.Equal(t, walletAccount().Owner.String(), fresh.Accounts[0].Owner.String())
}

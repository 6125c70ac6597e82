package core

// WalletStatus is the connection state of the external signing wallet.
type WalletStatus int

const (
	WalletDisconnected WalletStatus = iota
	WalletConnecting
	WalletConnected
	WalletApproving
)

func (s WalletStatus) String() string {
	switch s {
	case WalletDisconnected:
		return "disconnected"
	case WalletConnecting:
		return "connecting"
	case WalletConnected:
		return "connected"
	case WalletApproving:
		return "approving"
	default:
		return "unknown"
	}
}

// WalletKind selects the signer capability profile a connection was
// opened with. The two profiles are mutually exclusive; an approval
// must run against the kind matching its asset.
type WalletKind int

const (
	WalletKindNone WalletKind = iota
	WalletKindICP             // native-token signing
	WalletKindICRC            // token-standard signing (ckBTC and friends)
)

func (k WalletKind) String() string {
	switch k {
	case WalletKindICP:
		return "icp"
	case WalletKindICRC:
		return "icrc"
	default:
		return "none"
	}
}

// Asset names one of the two ledgers the wallet can spend from.
type Asset int

const (
	AssetICP Asset = iota
	AssetCKBTC
)

func (a Asset) String() string {
	if a == AssetCKBTC {
		return "ckbtc"
	}
	return "icp"
}

// RequiredWalletKind returns the signer profile an approval for this
// asset must be connected with.
func (a Asset) RequiredWalletKind() WalletKind {
	if a == AssetCKBTC {
		return WalletKindICRC
	}
	return WalletKindICP
}

// Account is one spendable account exposed by the signer.
type Account struct {
	Owner      Principal
	Subaccount []byte // nil means the default subaccount
}

// WalletConnection is the singleton state of the external signer
// session. It is owned by the wallet service and mutated only through
// its operations.
type WalletConnection struct {
	Status    WalletStatus
	Kind      WalletKind // WalletKindNone iff no signer handle is held
	Principal string     // owner of the first account, empty when disconnected
	Accounts  []Account
	Err       string // last categorized connection error, user-facing

	// Cached ledger balances in minor units. Stale values survive a
	// failed refresh; nil means never fetched.
	ICPBalance      *uint64
	CKBTCBalance    *uint64
	LoadingBalances bool
}

package core

// Network identifies which deployment the client talks to. Everything
// endpoint-shaped is derived from it.
type Network string

const (
	NetworkLocal   Network = "local"
	NetworkMainnet Network = "mainnet"
)

// Well-known mainnet service identifiers.
const (
	MainnetICPLedger   = "ryjl3-tyaaa-aaaaa-aaaba-cai"
	MainnetCKBTCLedger = "mxzaz-hqaaa-aaaar-qaada-cai"
)

// Config carries the environment-dependent endpoint and service
// selection. It is resolved once at startup and read-only afterwards.
type Config struct {
	Network Network

	// APIHost is the boundary endpoint transports are built against.
	APIHost string

	// IdentityProviderURL is the interactive login page of the
	// identity provider.
	IdentityProviderURL string

	// WalletSignerURL is the external signer's interactive sign page.
	WalletSignerURL string

	// Remote service identifiers. Table services are per-session and
	// discovered through the lobby, so only the static two live here.
	LobbyService   string
	HistoryService string

	// Ledger identifiers for the two supported assets.
	ICPLedger   string
	CKBTCLedger string
}

// DefaultConfig returns the endpoint selection for a network. Local
// service identifiers must still be filled in by the caller from its
// deployment environment.
func DefaultConfig(network Network) Config {
	if network == NetworkLocal {
		return Config{
			Network:             NetworkLocal,
			APIHost:             "http://127.0.0.1:4943",
			IdentityProviderURL: "http://localhost:4943",
			WalletSignerURL:     "https://staging.oisy.com/sign",
			ICPLedger:           MainnetICPLedger,
			CKBTCLedger:         MainnetCKBTCLedger,
		}
	}
	return Config{
		Network:             NetworkMainnet,
		APIHost:             "https://ic0.app",
		IdentityProviderURL: "https://identity.internetcomputer.org",
		WalletSignerURL:     "https://oisy.com/sign",
		ICPLedger:           MainnetICPLedger,
		CKBTCLedger:         MainnetCKBTCLedger,
	}
}

// IsLocal reports whether the client targets a local replica, which
// requires a trust-root fetch before certified calls.
func (c Config) IsLocal() bool {
	return c.Network == NetworkLocal
}

// LedgerID returns the service identifier of the ledger backing an asset.
func (c Config) LedgerID(asset Asset) string {
	if asset == AssetCKBTC {
		return c.CKBTCLedger
	}
	return c.ICPLedger
}

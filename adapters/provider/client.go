// Package provider implements the identity provider client: it runs
// the interactive login flow against the provider's login page and
// persists the issued delegated session between process runs.
package provider

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/JoshDFN/cleardeck/adapters/identity"
	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

// sessionKeyName is the store key the delegated session lives under.
const sessionKeyName = "session"

// Client is the identity provider client handle.
type Client struct {
	store  ports.SessionStore
	open   func(url string) error
	listen string
	log    zerolog.Logger
}

var _ ports.IdentityProvider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBrowserOpener overrides how the login page is opened.
func WithBrowserOpener(open func(url string) error) Option {
	return func(c *Client) { c.open = open }
}

// WithListenAddr overrides the loopback callback bind address.
func WithListenAddr(addr string) Option {
	return func(c *Client) { c.listen = addr }
}

// WithProviderLogger sets the client logger.
func WithProviderLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// New creates a provider client persisting sessions through store.
func New(store ports.SessionStore, opts ...Option) *Client {
	c := &Client{
		store:  store,
		open:   openBrowser,
		listen: "127.0.0.1:0",
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsAuthenticated reports whether a stored session exists. Expiry of
// the stored chain is advisory; validity checks belong to the caller.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	_, err := c.store.Load(ctx, sessionKeyName)
	if errors.Is(err, core.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Identity reconstructs the delegated identity from the stored session.
func (c *Client) Identity(ctx context.Context) (core.Identity, error) {
	blob, err := c.store.Load(ctx, sessionKeyName)
	if err != nil {
		return nil, err
	}

	record, err := decodeRecord(blob)
	if err != nil {
		return nil, err
	}

	session, err := identity.Ed25519FromKey(ed25519.PrivateKey(record.SessionKey))
	if err != nil {
		return nil, err
	}
	chain, err := decodeChain(record.Delegations)
	if err != nil {
		return nil, err
	}
	return identity.NewDelegated(session, record.RootKey, chain), nil
}

// Login generates a fresh session key, runs the interactive flow, and
// persists the issued delegation. The stored session expires with the
// first chain link.
func (c *Client) Login(ctx context.Context, req ports.LoginRequest) (core.Identity, error) {
	session, err := identity.NewEd25519Identity()
	if err != nil {
		return nil, err
	}

	payload, err := c.awaitCallback(ctx, func(redirect string) string {
		return loginURL(req.ProviderURL, redirect, session.PublicKey(), req.MaxValidity)
	})
	if err != nil {
		return nil, err
	}

	chain, err := decodeChain(payload.Delegations)
	if err != nil {
		return nil, err
	}

	record := sessionRecord{
		SessionKey:  session.Key(),
		RootKey:     payload.UserPublicKey,
		Delegations: payload.Delegations,
	}
	blob, err := encodeRecord(record)
	if err != nil {
		return nil, err
	}

	ttl := chain.TimeRemaining(time.Now())
	if ttl <= 0 {
		ttl = req.MaxValidity
	}
	if err := c.store.Save(ctx, sessionKeyName, blob, ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	delegated := identity.NewDelegated(session, payload.UserPublicKey, chain)
	c.log.Info().Str("principal", delegated.Principal().String()).Msg("provider login complete")
	return delegated, nil
}

// Logout discards the stored session.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Delete(ctx, sessionKeyName)
}

func loginURL(providerURL, redirect string, sessionPubKey []byte, maxValidity time.Duration) string {
	q := url.Values{}
	q.Set("session_key", base64.RawURLEncoding.EncodeToString(sessionPubKey))
	q.Set("redirect_uri", redirect)
	q.Set("max_time_to_live", strconv.FormatInt(maxValidity.Nanoseconds(), 10))
	return providerURL + "?" + q.Encode()
}

func openBrowser(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

// MaxSessionValidity is the delegation lifetime requested at login.
const MaxSessionValidity = 7 * 24 * time.Hour

// DevIdentityFactory derives a deterministic identity from a seed
// string. Wired only for local development.
type DevIdentityFactory func(seed string) (core.Identity, error)

// AuthService owns the process-wide Session. It is the single writer;
// the session is mutated only through its operations and read through
// Session snapshots. The mutex is never held across a network call.
type AuthService struct {
	cfg        core.Config
	provider   ports.IdentityProvider
	transports ports.TransportFactory
	events     ports.EventPublisher
	devIDs     DevIdentityFactory
	log        zerolog.Logger

	mu          sync.Mutex
	initialized bool
	session     core.Session
}

// AuthOption configures optional auth service collaborators.
type AuthOption func(*AuthService)

// WithAuthLogger sets the service logger.
func WithAuthLogger(logger zerolog.Logger) AuthOption {
	return func(s *AuthService) { s.log = logger }
}

// WithEventPublisher enables best-effort session lifecycle events.
func WithEventPublisher(pub ports.EventPublisher) AuthOption {
	return func(s *AuthService) { s.events = pub }
}

// WithDevIdentities enables DevLogin with the given factory.
func WithDevIdentities(factory DevIdentityFactory) AuthOption {
	return func(s *AuthService) { s.devIDs = factory }
}

// NewAuthService creates the auth service. The session starts in the
// loading state until Init runs.
func NewAuthService(cfg core.Config, provider ports.IdentityProvider, transports ports.TransportFactory, opts ...AuthOption) *AuthService {
	s := &AuthService{
		cfg:        cfg,
		provider:   provider,
		transports: transports,
		log:        zerolog.Nop(),
		session:    core.Session{Loading: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init probes the identity provider for an existing authenticated
// session and overwrites the process-wide Session with the outcome.
// Provider failures collapse to an unauthenticated session; Init never
// leaves the session loading.
func (s *AuthService) Init(ctx context.Context) core.Session {
	session, initialized := s.probe(ctx)

	s.mu.Lock()
	s.initialized = initialized
	s.session = session
	s.mu.Unlock()

	return session
}

func (s *AuthService) probe(ctx context.Context) (core.Session, bool) {
	authed, err := s.provider.IsAuthenticated(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("auth init failed")
		return core.Session{}, false
	}
	if !authed {
		return core.Session{}, true
	}

	identity, err := s.provider.Identity(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("auth init failed to load identity")
		return core.Session{}, false
	}

	// The provider may report authenticated while the delegation chain
	// has already expired; staleness is detected here, not prevented.
	if delegated, ok := identity.(core.DelegatedIdentity); ok {
		chain := delegated.Delegation()
		if chain == nil || len(chain.Delegations) == 0 {
			s.log.Warn().Msg("identity carries no delegation metadata, skipping expiry check")
		}
		now := time.Now()
		if !chain.Valid(now) {
			s.log.Warn().Msg("delegation expired, clearing auth state")
			if err := s.provider.Logout(ctx); err != nil {
				s.log.Debug().Err(err).Msg("provider logout during init failed")
			}
			return core.Session{}, true
		}
		if remaining := chain.TimeRemaining(now); remaining > 0 {
			s.log.Info().Float64("hours", remaining.Hours()).Msg("delegation still valid")
		}
	} else {
		s.log.Debug().Msg("identity does not expose a delegation, skipping expiry check")
	}

	return core.Session{
		Authenticated: true,
		Principal:     identity.Principal().String(),
		Identity:      identity,
	}, true
}

// Login runs the provider's interactive login flow and overwrites the
// session on success. Provider failures surface verbatim.
func (s *AuthService) Login(ctx context.Context) (string, error) {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized {
		return "", core.ErrAuthClientNotInitialized
	}

	identity, err := s.provider.Login(ctx, ports.LoginRequest{
		ProviderURL: s.cfg.IdentityProviderURL,
		MaxValidity: MaxSessionValidity,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("login failed")
		return "", err
	}

	principal := identity.Principal().String()
	s.mu.Lock()
	s.session = core.Session{Authenticated: true, Principal: principal, Identity: identity}
	s.mu.Unlock()

	s.log.Info().Str("principal", principal).Msg("logged in")

	if s.events != nil {
		if err := s.events.PublishLogin(ctx, principal); err != nil {
			s.log.Debug().Err(err).Msg("failed to publish login event")
		}
	}
	return principal, nil
}

// Logout ends the session. The provider-side logout is best-effort;
// the local session is reset unconditionally and the provider client
// is kept for reuse. Logout never fails.
func (s *AuthService) Logout(ctx context.Context) {
	s.mu.Lock()
	principal := s.session.Principal
	s.mu.Unlock()

	if err := s.provider.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("provider logout failed")
	}

	s.mu.Lock()
	s.session = core.Session{}
	s.mu.Unlock()

	if principal != "" && s.events != nil {
		if err := s.events.PublishLogout(ctx, principal); err != nil {
			s.log.Debug().Err(err).Msg("failed to publish logout event")
		}
	}
}

// DevLogin sets the session from a deterministic seed-derived identity,
// bypassing the provider. Only available on local networks.
func (s *AuthService) DevLogin(ctx context.Context, seed string) (string, error) {
	if !s.cfg.IsLocal() {
		return "", core.ErrEnvironmentNotAllowed
	}
	if s.devIDs == nil {
		return "", fmt.Errorf("dev identities not configured")
	}

	identity, err := s.devIDs(seed)
	if err != nil {
		return "", fmt.Errorf("failed to derive dev identity: %w", err)
	}

	principal := identity.Principal().String()
	s.mu.Lock()
	s.session = core.Session{Authenticated: true, Principal: principal, Identity: identity}
	s.mu.Unlock()

	s.log.Info().Str("principal", principal).Msg("dev login")
	return principal, nil
}

// Agent constructs a transport bound to the current identity. On local
// networks the trust root is fetched before the transport is returned;
// this is the only network I/O performed as a prerequisite here.
func (s *AuthService) Agent(ctx context.Context) (ports.Transport, error) {
	s.mu.Lock()
	identity := s.session.Identity
	s.mu.Unlock()
	if identity == nil {
		return nil, core.ErrNotAuthenticated
	}

	transport, err := s.transports.Create(ctx, s.cfg.APIHost, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	if s.cfg.IsLocal() {
		if err := transport.FetchRootKey(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch trust root: %w", err)
		}
	}
	return transport, nil
}

// Session returns a snapshot of the current session.
func (s *AuthService) Session() core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

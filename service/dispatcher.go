package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

// DefaultCallTimeout bounds every dispatched remote call.
const DefaultCallTimeout = 30 * time.Second

// AgentSource yields a transport bound to the caller's current
// identity. Resolution happens per call and is never cached, so an
// identity change between two calls is honored by the second one.
type AgentSource interface {
	Agent(ctx context.Context) (ports.Transport, error)
}

// Dispatcher invokes remote service operations with a fresh
// identity-bound transport and a hard deadline per call. The deadline
// context is handed to the transport, so a timed-out call is cancelled
// rather than left running in the background.
type Dispatcher struct {
	agents  AgentSource
	timeout time.Duration
	log     zerolog.Logger
}

var _ ports.Caller = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCallTimeout overrides the per-call deadline.
func WithCallTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(logger zerolog.Logger) DispatcherOption {
	return func(disp *Dispatcher) { disp.log = logger }
}

// NewDispatcher creates a dispatcher resolving transports from agents.
func NewDispatcher(agents AgentSource, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		agents:  agents,
		timeout: DefaultCallTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call invokes a state-changing operation on a remote service.
func (d *Dispatcher) Call(ctx context.Context, service, method string, args []byte) ([]byte, error) {
	return d.invoke(ctx, service, method, args, false)
}

// Query invokes a read-only operation on a remote service.
func (d *Dispatcher) Query(ctx context.Context, service, method string, args []byte) ([]byte, error) {
	return d.invoke(ctx, service, method, args, true)
}

func (d *Dispatcher) invoke(ctx context.Context, service, method string, args []byte, query bool) ([]byte, error) {
	requestID := uuid.New().String()

	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	agent, err := d.agents.Agent(cctx)
	if err != nil {
		if timedOut(cctx, err) {
			return nil, d.timeoutFailure(requestID, service, method)
		}
		return nil, err
	}

	var out []byte
	if query {
		out, err = agent.Query(cctx, service, method, args)
	} else {
		out, err = agent.Call(cctx, service, method, args)
	}
	if err != nil {
		if timedOut(cctx, err) {
			return nil, d.timeoutFailure(requestID, service, method)
		}
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) timeoutFailure(requestID, service, method string) error {
	d.log.Warn().
		Str("request_id", requestID).
		Str("service", service).
		Str("method", method).
		Dur("timeout", d.timeout).
		Msg("remote call timed out")
	return fmt.Errorf("%w after %s", core.ErrNetworkTimeout, d.timeout)
}

func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// AnonymousAgents resolves identity-less transports for public
// queries such as ledger balance reads.
type AnonymousAgents struct {
	cfg        core.Config
	transports ports.TransportFactory
}

// NewAnonymousAgents creates an AgentSource with no identity bound.
func NewAnonymousAgents(cfg core.Config, transports ports.TransportFactory) *AnonymousAgents {
	return &AnonymousAgents{cfg: cfg, transports: transports}
}

// Agent builds an anonymous transport, fetching the trust root first
// on local networks.
func (a *AnonymousAgents) Agent(ctx context.Context) (ports.Transport, error) {
	transport, err := a.transports.Create(ctx, a.cfg.APIHost, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	if a.cfg.IsLocal() {
		if err := transport.FetchRootKey(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch trust root: %w", err)
		}
	}
	return transport, nil
}

// BuildStub satisfies ports.Caller where no live client context
// exists, such as build or test harness runs. Every invocation fails
// with core.ErrBuildTimeInvocation so stray network calls surface as
// programming errors.
type BuildStub struct{}

var _ ports.Caller = BuildStub{}

func (BuildStub) Call(ctx context.Context, service, method string, args []byte) ([]byte, error) {
	return nil, core.ErrBuildTimeInvocation
}

func (BuildStub) Query(ctx context.Context, service, method string, args []byte) ([]byte, error) {
	return nil, core.ErrBuildTimeInvocation
}

// Package agent implements the HTTP transport the dispatcher binds to
// a boundary endpoint. One transport is created per call with the
// identity current at that moment.
package agent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

// Factory builds HTTP agents against a boundary host.
type Factory struct {
	client *http.Client
	log    zerolog.Logger
}

var _ ports.TransportFactory = (*Factory)(nil)

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient overrides the shared HTTP client.
func WithHTTPClient(client *http.Client) FactoryOption {
	return func(f *Factory) { f.client = client }
}

// WithAgentLogger sets the transport logger.
func WithAgentLogger(logger zerolog.Logger) FactoryOption {
	return func(f *Factory) { f.log = logger }
}

// NewFactory creates a transport factory. The default client carries
// no timeout of its own; deadlines come from the caller's context.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		client: &http.Client{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds an agent bound to host and identity. A nil identity
// yields an anonymous agent.
func (f *Factory) Create(ctx context.Context, host string, id core.Identity) (ports.Transport, error) {
	if host == "" {
		return nil, fmt.Errorf("transport host is required")
	}
	return &HTTPAgent{
		host:     host,
		identity: id,
		client:   f.client,
		log:      f.log,
	}, nil
}

// HTTPAgent issues envelope-signed requests against one boundary host
// on behalf of one identity.
type HTTPAgent struct {
	host     string
	identity core.Identity
	client   *http.Client
	log      zerolog.Logger
	rootKey  []byte
}

// envelope is the submission format for a remote invocation.
type envelope struct {
	RequestID string `json:"request_id"`
	Sender    string `json:"sender"`
	Method    string `json:"method"`
	Args      string `json:"args,omitempty"`
	PubKey    string `json:"sender_pubkey,omitempty"`
	Signature string `json:"sender_sig,omitempty"`
	Expiry    int64  `json:"ingress_expiry"`
}

// Call submits a state-changing invocation.
func (a *HTTPAgent) Call(ctx context.Context, service, method string, args []byte) ([]byte, error) {
	return a.submit(ctx, service, method, args, "call")
}

// Query submits a read-only invocation.
func (a *HTTPAgent) Query(ctx context.Context, service, method string, args []byte) ([]byte, error) {
	return a.submit(ctx, service, method, args, "query")
}

func (a *HTTPAgent) submit(ctx context.Context, service, method string, args []byte, mode string) ([]byte, error) {
	env := envelope{
		RequestID: uuid.New().String(),
		Sender:    core.AnonymousPrincipal().String(),
		Method:    method,
		Args:      base64.StdEncoding.EncodeToString(args),
		Expiry:    time.Now().Add(4 * time.Minute).UnixNano(),
	}

	if a.identity != nil {
		env.Sender = a.identity.Principal().String()
		env.PubKey = base64.StdEncoding.EncodeToString(a.identity.PublicKey())

		payload, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		sig, err := a.identity.Sign(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to sign request: %w", err)
		}
		env.Signature = base64.StdEncoding.EncodeToString(sig)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/canister/%s/%s", a.host, service, mode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.log.Debug().
			Int("status", resp.StatusCode).
			Str("service", service).
			Str("method", method).
			Msg("boundary rejected request")
		return nil, &core.TransportError{Status: resp.StatusCode, Message: string(out)}
	}
	return out, nil
}

// FetchRootKey retrieves the trust root from the boundary status
// endpoint. Required on local networks before certified responses
// verify; mainnet pins its root out of band.
func (a *HTTPAgent) FetchRootKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.host+"/api/v2/status", nil)
	if err != nil {
		return fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &core.TransportError{Status: resp.StatusCode, Message: string(body)}
	}

	var status struct {
		RootKey string `json:"root_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode status: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(status.RootKey)
	if err != nil {
		return fmt.Errorf("malformed root key: %w", err)
	}

	a.rootKey = key
	return nil
}

// RootKey returns the fetched trust root, or nil.
func (a *HTTPAgent) RootKey() []byte {
	return a.rootKey
}

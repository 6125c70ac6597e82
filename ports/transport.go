package ports

import (
	"context"

	"github.com/JoshDFN/cleardeck/core"
)

// Transport issues calls to remote services, bound to the identity it
// was created with. Argument and result payloads are opaque to this
// core; each service's own schema defines them.
type Transport interface {
	// Call invokes a state-changing operation.
	Call(ctx context.Context, service, method string, args []byte) ([]byte, error)

	// Query invokes a read-only operation.
	Query(ctx context.Context, service, method string, args []byte) ([]byte, error)

	// FetchRootKey fetches the trust root. Required once per transport
	// on local and test networks before certified calls verify.
	FetchRootKey(ctx context.Context) error
}

// TransportFactory builds transports against a boundary host. A nil
// identity yields an anonymous transport.
type TransportFactory interface {
	Create(ctx context.Context, host string, identity core.Identity) (Transport, error)
}

// Caller dispatches a named operation against a remote service. It is
// the surface application code programs against; the dispatcher
// implements it with per-call identity resolution and a deadline.
type Caller interface {
	Call(ctx context.Context, service, method string, args []byte) ([]byte, error)
	Query(ctx context.Context, service, method string, args []byte) ([]byte, error)
}

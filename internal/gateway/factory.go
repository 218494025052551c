package gateway

import (
	"time"

	"github.com/example/pixgate/internal/models"
)

// Factory resolves a subacquirer profile to its gateway implementation.
type Factory interface {
	Make(sub *models.Subacquirer) (Gateway, error)
}

// GatewayFactory is the production factory. The variant set is closed:
// adding a provider means adding a constructor here, never changing an
// existing one.
type GatewayFactory struct {
	timeout time.Duration
}

// NewFactory returns a factory whose gateways use the given HTTP timeout.
func NewFactory(timeout time.Duration) *GatewayFactory {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GatewayFactory{timeout: timeout}
}

// Make selects the gateway by subacquirer slug.
func (f *GatewayFactory) Make(sub *models.Subacquirer) (Gateway, error) {
	switch sub.Slug {
	case "subadq-a":
		return NewSubadqA(sub, f.timeout), nil
	case "subadq-b":
		return NewSubadqB(sub, f.timeout), nil
	case "mock":
		return NewMockGateway(sub), nil
	default:
		return nil, &UnsupportedGatewayError{Slug: sub.Slug}
	}
}

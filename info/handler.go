package info

import (
	"errors"
	"time"

	"github.com/drblury/apismoke/probe"
	"github.com/drblury/apismoke/responder"
)

// InfoProvider returns the payload that will be exposed by the version endpoint.
type InfoProvider func() any

// SwaggerProvider returns the raw OpenAPI document served by GetOpenAPIJSON.
type SwaggerProvider func() ([]byte, error)

// InfoOption follows the functional options pattern used by NewInfoHandler.
type InfoOption func(*InfoHandler)

const defaultProbeTimeout = 2 * time.Second

// Check is a named health probe. A nil error reports the check as healthy.
type Check struct {
	Name  string
	Probe probe.Func
}

// InfoHandler serves the auxiliary endpoints that sit next to the API
// handlers: health, version and the OpenAPI document.
type InfoHandler struct {
	*responder.Responder
	infoProvider    InfoProvider
	swaggerProvider SwaggerProvider
	checks          []Check
	probeTimeout    time.Duration
}

// NewInfoHandler constructs an InfoHandler with an empty version payload and
// no health checks.
func NewInfoHandler(opts ...InfoOption) *InfoHandler {
	ih := &InfoHandler{
		Responder: responder.NewResponder(),
		infoProvider: func() any {
			return map[string]string{}
		},
		swaggerProvider: func() ([]byte, error) {
			return nil, errors.New("api swagger provider not configured")
		},
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ih)
		}
	}
	return ih
}

// WithInfoResponder replaces the responder used to craft JSON responses and
// handle error reporting.
func WithInfoResponder(responder *responder.Responder) InfoOption {
	return func(ih *InfoHandler) {
		if responder != nil {
			ih.Responder = responder
		}
	}
}

// WithInfoProvider swaps the default metadata provider.
func WithInfoProvider(provider InfoProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.infoProvider = provider
		}
	}
}

// WithSwaggerProvider sets the source of the OpenAPI JSON document.
func WithSwaggerProvider(provider SwaggerProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.swaggerProvider = provider
		}
	}
}

// WithProbeTimeout adjusts the maximum duration allowed for each health check.
func WithProbeTimeout(timeout time.Duration) InfoOption {
	return func(ih *InfoHandler) {
		if timeout > 0 {
			ih.probeTimeout = timeout
		}
	}
}

// WithHealthChecks appends named checks to the health endpoint. Checks with an
// empty name or a nil probe are ignored.
func WithHealthChecks(checks ...Check) InfoOption {
	return func(ih *InfoHandler) {
		ih.checks = append(ih.checks, filterChecks(checks)...)
	}
}

// WithHealthCheck is a shortcut for a single named check.
func WithHealthCheck(name string, fn probe.Func) InfoOption {
	return WithHealthChecks(Check{Name: name, Probe: fn})
}

package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/apismoke/responder"
)

// Middleware wraps an http.Handler to produce a new http.Handler.
type Middleware func(http.Handler) http.Handler

// Option configures the router via the functional options pattern.
type Option func(*options)

// stage identifies one of the built-in middlewares.
type stage int

const (
	stageLogging stage = iota
	stageCORS
	stageTimeout
	stageValidation
)

type options struct {
	config    Config
	logger    *slog.Logger
	swagger   *openapi3.T
	responder *responder.Responder
	prepend   []Middleware
	append    []Middleware
	override  []Middleware
	disabled  map[stage]bool
}

func defaultOptions() *options {
	return &options{
		config:   Config{Timeout: 30 * time.Second},
		logger:   slog.Default(),
		disabled: make(map[stage]bool),
	}
}

func (o *options) middlewareChain() []Middleware {
	if len(o.override) > 0 {
		return slices.Clone(o.override)
	}

	chain := slices.Clone(o.prepend)
	chain = append(chain, o.builtins()...)
	return append(chain, o.append...)
}

// builtins orders logging outermost so rejected and timed-out requests are
// still recorded with their final status. Validation runs innermost, right
// before the API handler.
func (o *options) builtins() []Middleware {
	var chain []Middleware

	if !o.disabled[stageLogging] && o.logger != nil {
		chain = append(chain, loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders))
	}
	if !o.disabled[stageCORS] && len(o.config.CORS.Origins) > 0 {
		chain = append(chain, corsMiddleware(o.config.CORS))
	}
	if !o.disabled[stageTimeout] && o.config.Timeout > 0 {
		chain = append(chain, timeoutMiddleware(o.config.Timeout))
	}
	if !o.disabled[stageValidation] && o.swagger != nil {
		chain = append(chain, oapiMiddleware(o.swagger, o.responder))
	}
	return chain
}

func without(s stage) Option {
	return func(o *options) {
		o.disabled[s] = true
	}
}

// WithConfig replaces the router configuration with a copy of cfg.
func WithConfig(cfg Config) Option {
	cfg.QuietdownRoutes = slices.Clone(cfg.QuietdownRoutes)
	cfg.HideHeaders = slices.Clone(cfg.HideHeaders)
	cfg.CORS.Origins = slices.Clone(cfg.CORS.Origins)
	cfg.CORS.Methods = slices.Clone(cfg.CORS.Methods)
	cfg.CORS.Headers = slices.Clone(cfg.CORS.Headers)
	return func(o *options) {
		o.config = cfg
	}
}

// WithConfigMutator applies a mutation to the router configuration after defaults are set.
func WithConfigMutator(mutator func(*Config)) Option {
	return func(o *options) {
		if mutator != nil {
			mutator(&o.config)
		}
	}
}

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSwagger enables request validation against the OpenAPI document.
func WithSwagger(swagger *openapi3.T) Option {
	return func(o *options) {
		o.swagger = swagger
	}
}

// WithResponder renders validation failures as JSON error envelopes instead
// of plain text.
func WithResponder(r *responder.Responder) Option {
	return func(o *options) {
		o.responder = r
	}
}

// WithMiddlewares prepends custom middlewares ahead of the built-in chain.
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.prepend = append(o.prepend, middlewares...)
	}
}

// WithTrailingMiddlewares appends middlewares after the built-in chain.
func WithTrailingMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.append = append(o.append, middlewares...)
	}
}

// WithMiddlewareChain replaces the whole chain, built-ins included.
func WithMiddlewareChain(middlewares ...Middleware) Option {
	chain := slices.Clone(middlewares)
	return func(o *options) {
		o.override = chain
	}
}

// WithoutOpenAPIValidation disables request validation.
func WithoutOpenAPIValidation() Option { return without(stageValidation) }

// WithoutCORSMiddleware disables CORS handling regardless of configuration.
func WithoutCORSMiddleware() Option { return without(stageCORS) }

// WithoutTimeoutMiddleware disables the per-request timeout.
func WithoutTimeoutMiddleware() Option { return without(stageTimeout) }

// WithoutLoggingMiddleware disables request logging.
func WithoutLoggingMiddleware() Option { return without(stageLogging) }

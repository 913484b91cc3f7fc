package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"

	"github.com/drblury/apismoke/responder"
)

const timeoutBody = `{"success":false,"error":"request timed out"}`

// New returns a new *http.ServeMux serving apiHandle behind the configured
// middleware chain.
func New(apiHandle http.Handler, opts ...Option) *http.ServeMux {
	if apiHandle == nil {
		panic("router: handler cannot be nil")
	}

	settings := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	finalHandler := applyMiddlewares(apiHandle, settings.middlewareChain())
	mux := http.NewServeMux()
	mux.Handle("/", finalHandler)
	return mux
}

func applyMiddlewares(handler http.Handler, middlewares []Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		if middleware == nil {
			continue
		}
		handler = middleware(handler)
	}
	return handler
}

// requestWriter carries the request into the validator's ErrorHandler, which
// only receives the ResponseWriter, so envelopes reuse the caller's request id.
type requestWriter struct {
	http.ResponseWriter
	req *http.Request
}

func (rw *requestWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func oapiMiddleware(swagger *openapi3.T, r *responder.Responder) Middleware {
	return func(next http.Handler) http.Handler {
		// Servers are cleared on a copy so validation does not depend on the
		// host the API is reached through.
		validated := *swagger
		validated.Servers = nil

		validatorOptions := &oapiMW.Options{
			Options: openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if r == nil {
			return oapiMW.OapiRequestValidatorWithOptions(&validated, validatorOptions)(next)
		}

		validatorOptions.ErrorHandler = func(w http.ResponseWriter, message string, statusCode int) {
			var req *http.Request
			if rw, ok := w.(*requestWriter); ok {
				req = rw.req
			}
			r.HandleAPIError(w, req, statusCode, errors.New(message), "request failed OpenAPI validation")
		}
		validate := oapiMW.OapiRequestValidatorWithOptions(&validated, validatorOptions)(next)

		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			validate.ServeHTTP(&requestWriter{ResponseWriter: w, req: req}, req)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger, quietdownRoutes []string, hideHeaders []string) Middleware {
	quietRoutes := slices.Clone(quietdownRoutes)
	redacted := slices.Clone(hideHeaders)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(quietRoutes, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}

			headers := r.Header.Clone()
			redactHeaders(headers, redacted)

			level := slog.LevelDebug
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "Request",
				"Path", r.URL.Path,
				"Method", r.Method,
				"Status", status,
				"Bytes", rec.bytes,
				"Duration", time.Since(started),
				"RequestID", r.Header.Get(responder.RequestIDHeader),
				"Header", headers,
			)
		})
	}
}

func corsMiddleware(cfg CORSConfig) Middleware {
	headers := strings.Join(cfg.Headers, ",")
	methods := strings.Join(cfg.Methods, ",")
	origins := slices.Clone(cfg.Origins)

	return func(next http.Handler) http.Handler {
		if len(origins) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if allowedOrigin(origin, origins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}

func allowedOrigin(origin string, allowed []string) bool {
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

func redactHeaders(headers http.Header, hideHeaders []string) {
	for _, header := range hideHeaders {
		canonical := http.CanonicalHeaderKey(header)
		values, exists := headers[canonical]
		if !exists {
			continue
		}

		redactedLen := 0
		for _, value := range values {
			redactedLen += len(value)
		}

		headers[canonical] = []string{fmt.Sprintf("[REDACTED - %d bytes]", redactedLen)}
	}
}

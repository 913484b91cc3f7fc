// Package server implements the reference restaurant API that the smoke
// runner is pointed at during development: parsing free-text input, listing
// and adding restaurants, plus health, version and OpenAPI endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/drblury/apismoke/apispec"
	"github.com/drblury/apismoke/info"
	"github.com/drblury/apismoke/responder"
	"github.com/drblury/apismoke/restaurant"
	"github.com/drblury/apismoke/router"
	"github.com/drblury/apismoke/store"
)

// Server holds the collaborators behind the API handlers.
type Server struct {
	resp       *responder.Responder
	store      store.Store
	parser     *restaurant.Parser
	info       *info.InfoHandler
	infoOpts   []info.InfoOption
	routerOpts []router.Option
}

// Option configures a Server.
type Option func(*Server)

// WithResponder shares a responder between the handlers, the info endpoints and
// the validation middleware.
func WithResponder(r *responder.Responder) Option {
	return func(s *Server) {
		if r != nil {
			s.resp = r
		}
	}
}

// WithLogger is a shortcut for a responder logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.resp = responder.NewResponder(responder.WithLogger(logger))
		}
	}
}

// WithParser overrides the parser used by POST /api/parse.
func WithParser(p *restaurant.Parser) Option {
	return func(s *Server) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithInfoOptions forwards options to the health, version and OpenAPI handler.
func WithInfoOptions(opts ...info.InfoOption) Option {
	return func(s *Server) {
		s.infoOpts = append(s.infoOpts, opts...)
	}
}

// WithRouterOptions forwards options to the middleware chain built by Handler.
func WithRouterOptions(opts ...router.Option) Option {
	return func(s *Server) {
		s.routerOpts = append(s.routerOpts, opts...)
	}
}

// New returns a Server backed by st.
func New(st store.Store, opts ...Option) *Server {
	if st == nil {
		panic("server: store cannot be nil")
	}

	s := &Server{
		resp:   responder.NewResponder(),
		store:  st,
		parser: restaurant.NewParser(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	infoOpts := []info.InfoOption{
		info.WithInfoResponder(s.resp),
		info.WithSwaggerProvider(func() ([]byte, error) {
			return apispec.JSON(context.Background())
		}),
	}
	s.info = info.NewInfoHandler(append(infoOpts, s.infoOpts...)...)
	return s
}

// Routes returns the bare API mux without middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/parse", s.handleParse)
	mux.HandleFunc("GET /api/restaurants", s.handleListRestaurants)
	mux.HandleFunc("POST /api/restaurants", s.handleAddRestaurant)
	mux.HandleFunc("GET /api/health", s.info.GetHealth)
	mux.HandleFunc("GET /api/openapi.json", s.info.GetOpenAPIJSON)
	mux.HandleFunc("GET /version", s.info.GetVersion)
	return mux
}

// Handler wraps Routes with the default middleware chain, including request
// validation against the embedded OpenAPI document.
func (s *Server) Handler(ctx context.Context) (http.Handler, error) {
	doc, err := apispec.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	opts := []router.Option{
		router.WithLogger(s.resp.Logger()),
		router.WithSwagger(doc),
		router.WithResponder(s.resp),
	}
	return router.New(s.Routes(), append(opts, s.routerOpts...)...), nil
}

package smoke

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/drblury/apismoke/probe"
)

type contract struct {
	router routers.Router
}

func newContract(doc *openapi3.T) (*contract, error) {
	// Servers are cleared on a copy so routes match whatever host the runner
	// targets. The caller's document is left as is.
	routed := *doc
	routed.Servers = nil
	router, err := gorillamux.NewRouter(&routed)
	if err != nil {
		return nil, fmt.Errorf("smoke: failed to build contract router: %w", err)
	}
	return &contract{router: router}, nil
}

func (c *contract) validate(resp *http.Response, body []byte) error {
	if resp.Request == nil {
		return errors.New("contract check: response carries no request")
	}

	route, params, err := c.router.FindRoute(resp.Request)
	if err != nil {
		return probe.Failf("contract: %v", err)
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    resp.Request,
			PathParams: params,
			Route:      route,
		},
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Body:    io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{IncludeResponseStatus: true},
	}
	if err := openapi3filter.ValidateResponse(resp.Request.Context(), input); err != nil {
		return probe.Failf("contract: %v", err)
	}
	return nil
}

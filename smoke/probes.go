package smoke

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drblury/apismoke/jsonutil"
	"github.com/drblury/apismoke/probe"
	"github.com/drblury/apismoke/restaurant"
)

// API paths exercised by the probes.
const (
	ParsePath       = "/api/parse"
	RestaurantsPath = "/api/restaurants"
)

// Fixed probe inputs and expectations.
const (
	SimpleInput        = "Vitrina Tel Aviv"
	ExpectedSimpleName = "Vitrina"
	SocialInput        = "https://instagram.com/vitrina_tlv"
	NegativeInput      = "a"

	TestRestaurantName    = "API Test Restaurant"
	TestRestaurantCity    = "Test City"
	TestRestaurantCuisine = "Testing"
)

// Report labels, in run order.
const (
	LabelParseSimple     = "Parse simple"
	LabelParseSocial     = "Parse social link"
	LabelParseNegative   = "Parse negative (short input)"
	LabelListRestaurants = "List restaurants"
	LabelAddRestaurant   = "Add restaurant"
)

// LabelParseNegativeShort replaces LabelParseNegative on FAILED and ERROR lines.
const LabelParseNegativeShort = "Parse negative"

const snippetLimit = 200

// ParseSimple posts a plain "name city" string and expects the name alone back.
func (r *Runner) ParseSimple(ctx context.Context) probe.Result {
	var payload restaurant.ParseResponse
	err := r.httpProbe("parse-simple", http.MethodPost, ParsePath,
		probe.WithHTTPJSONBody(restaurant.ParseRequest{Input: SimpleInput}),
		probe.WithHTTPStatusExpectation(probe.AnyHTTPStatus),
		probe.WithHTTPBodyValidator(decodeInto(&payload)),
		probe.WithHTTPBodyValidator(func(_ *http.Response, body []byte) error {
			if payload.Success && payload.Restaurant != nil && payload.Restaurant.Name == ExpectedSimpleName {
				return nil
			}
			return failWithBody(body)
		}),
	)(ctx)
	return r.report(probe.Evaluate(LabelParseSimple, err))
}

// ParseSocial posts an Instagram profile URL and only checks the success flag.
func (r *Runner) ParseSocial(ctx context.Context) probe.Result {
	var payload restaurant.ParseResponse
	err := r.httpProbe("parse-social", http.MethodPost, ParsePath,
		probe.WithHTTPJSONBody(restaurant.ParseRequest{Input: SocialInput}),
		probe.WithHTTPStatusExpectation(probe.AnyHTTPStatus),
		probe.WithHTTPBodyValidator(decodeInto(&payload)),
		probe.WithHTTPBodyValidator(func(_ *http.Response, body []byte) error {
			if payload.Success {
				return nil
			}
			return failWithBody(body)
		}),
	)(ctx)
	return r.report(probe.Evaluate(LabelParseSocial, err))
}

// ParseNegative posts a one-character input and expects HTTP 400. The body is
// not inspected.
func (r *Runner) ParseNegative(ctx context.Context) probe.Result {
	err := r.httpProbe("parse-negative", http.MethodPost, ParsePath,
		probe.WithHTTPJSONBody(restaurant.ParseRequest{Input: NegativeInput}),
		probe.WithHTTPAllowedStatuses(http.StatusBadRequest),
	)(ctx)

	res := probe.Evaluate(LabelParseNegative, err)
	if res.Outcome != probe.Passed {
		res.Label = LabelParseNegativeShort
	}
	return r.report(res)
}

// ListRestaurants fetches the saved list. The count is reported, not asserted.
func (r *Runner) ListRestaurants(ctx context.Context) probe.Result {
	var payload restaurant.ListResponse
	err := r.httpProbe("list-restaurants", http.MethodGet, RestaurantsPath,
		probe.WithHTTPStatusExpectation(probe.AnyHTTPStatus),
		probe.WithHTTPBodyValidator(decodeInto(&payload)),
		probe.WithHTTPBodyValidator(func(_ *http.Response, body []byte) error {
			if payload.Success {
				return nil
			}
			return failWithBody(body)
		}),
	)(ctx)

	res := probe.Evaluate(LabelListRestaurants, err)
	if res.Outcome == probe.Passed {
		count := len(payload.Restaurants)
		res.Detail = fmt.Sprintf("%d found", count)
		res.Value = strconv.Itoa(count)
	}
	return r.report(res)
}

// AddRestaurant creates a test restaurant and returns its identifier. The
// identifier is empty unless the probe passed.
func (r *Runner) AddRestaurant(ctx context.Context) (string, probe.Result) {
	req := restaurant.SaveRequest{Restaurant: &restaurant.Input{
		Name:    TestRestaurantName,
		City:    restaurant.StringPtr(TestRestaurantCity),
		Cuisine: restaurant.StringPtr(TestRestaurantCuisine),
	}}

	var payload restaurant.SaveResponse
	err := r.httpProbe("add-restaurant", http.MethodPost, RestaurantsPath,
		probe.WithHTTPJSONBody(req),
		probe.WithHTTPStatusExpectation(probe.AnyHTTPStatus),
		probe.WithHTTPBodyValidator(decodeInto(&payload)),
		probe.WithHTTPBodyValidator(func(_ *http.Response, body []byte) error {
			if payload.Success && payload.Restaurant != nil &&
				payload.Restaurant.Name == TestRestaurantName && payload.Restaurant.ID != "" {
				return nil
			}
			return failWithBody(body)
		}),
	)(ctx)

	res := probe.Evaluate(LabelAddRestaurant, err)
	if res.Outcome != probe.Passed {
		return "", r.report(res)
	}
	res.Value = payload.Restaurant.ID
	res.Detail = "ID: " + res.Value
	return res.Value, r.report(res)
}

func (r *Runner) httpProbe(name, method, path string, opts ...probe.HTTPProbeOption) probe.Func {
	var started time.Time
	requestID := r.runID + "/" + name

	base := []probe.HTTPProbeOption{
		probe.WithHTTPTimeout(r.timeout),
		probe.WithHTTPRequestMutator(func(req *http.Request) error {
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Request-ID", requestID)
			started = time.Now()
			r.log.Debug("sending probe request", "probe", name, "method", req.Method, "url", req.URL.String(), "requestId", requestID)
			return nil
		}),
		probe.WithHTTPResponseValidator(func(resp *http.Response) error {
			r.log.Debug("received probe response", "probe", name, "status", resp.StatusCode, "duration", time.Since(started), "requestId", requestID)
			return nil
		}),
	}
	if r.contract != nil {
		// contract runs first so a schema mismatch is reported before content checks
		opts = append([]probe.HTTPProbeOption{probe.WithHTTPBodyValidator(r.contract.validate)}, opts...)
	}
	return probe.NewHTTPProbe(name, method, r.baseURL+path, r.client, append(base, opts...)...)
}

func decodeInto(v any) probe.HTTPBodyValidator {
	return func(_ *http.Response, body []byte) error {
		if err := jsonutil.Unmarshal(body, v); err != nil {
			return fmt.Errorf("malformed response body %q: %w", probe.Snippet(bytes.TrimSpace(body), snippetLimit), err)
		}
		return nil
	}
}

func failWithBody(body []byte) error {
	return probe.Failf("%s", strings.TrimSpace(probe.Snippet(body, snippetLimit)))
}

package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/drblury/apismoke/jsonutil"
)

// HTTPStatusExpectation determines whether a given HTTP status code is acceptable.
type HTTPStatusExpectation func(status int) bool

// HTTPRequestMutator allows callers to tweak the outbound request prior to dispatch.
type HTTPRequestMutator func(req *http.Request) error

// HTTPResponseValidator inspects the received response and can veto the probe.
type HTTPResponseValidator func(resp *http.Response) error

// HTTPBodyValidator inspects the buffered response body. Return an
// AssertionError (see Failf) for content mismatches; any other error is
// reported as a probe error.
type HTTPBodyValidator func(resp *http.Response, body []byte) error

// HTTPProbeOption configures the behaviour of NewHTTPProbe.
type HTTPProbeOption func(*httpProbe)

// httpProbe is one request/response exchange. It is immutable after
// construction so the resulting Func can run any number of times.
type httpProbe struct {
	name     string
	method   string
	target   string
	client   HTTPDoer
	timeout  time.Duration
	maxBody  int64
	encode   func() ([]byte, error)
	mimeType string
	expect   HTTPStatusExpectation
	mutators []HTTPRequestMutator
	onResp   []HTTPResponseValidator
	onBody   []HTTPBodyValidator
}

// NewHTTPProbe creates a Func that performs an HTTP request against target.
// By default the probe succeeds on any 2xx status. Status and content
// mismatches are reported as AssertionErrors so Classify can tell them apart
// from transport failures. The response body is always closed.
func NewHTTPProbe(name, method, target string, client HTTPDoer, opts ...HTTPProbeOption) Func {
	p := &httpProbe{
		name:    name,
		method:  strings.ToUpper(strings.TrimSpace(method)),
		target:  strings.TrimSpace(target),
		client:  client,
		expect:  defaultHTTPStatusExpectation,
		maxBody: maxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.method == "" {
		p.method = http.MethodGet
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	if p.expect == nil {
		p.expect = defaultHTTPStatusExpectation
	}
	if p.maxBody <= 0 {
		p.maxBody = maxBodyBytes
	}
	return p.run
}

func (p *httpProbe) run(ctx context.Context) error {
	if p.target == "" {
		return fmt.Errorf("%s probe: target URL is required", p.name)
	}

	ctx = contextOrBackground(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := p.newRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s probe request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if err := p.check(resp); err != nil {
		return fmt.Errorf("%s probe: %w", p.name, err)
	}

	// Drain so keep-alive connections are reused.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("%s probe: failed to drain response body: %w", p.name, err)
	}
	return nil
}

func (p *httpProbe) newRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if p.encode != nil {
		data, err := p.encode()
		if err != nil {
			return nil, fmt.Errorf("%s probe: failed to encode request body: %w", p.name, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, p.target, body)
	if err != nil {
		return nil, fmt.Errorf("%s probe: failed to build request: %w", p.name, err)
	}
	if p.mimeType != "" {
		req.Header.Set("Content-Type", p.mimeType)
	}

	for _, mutate := range p.mutators {
		if err := mutate(req); err != nil {
			return nil, fmt.Errorf("%s probe: request mutation failed: %w", p.name, err)
		}
	}
	return req, nil
}

// check applies the status expectation, then response validators, then body
// validators. The body is only buffered when a body validator is registered.
func (p *httpProbe) check(resp *http.Response) error {
	if !p.expect(resp.StatusCode) {
		return Failf("Status %d", resp.StatusCode)
	}
	for _, validate := range p.onResp {
		if err := validate(resp); err != nil {
			return err
		}
	}
	if len(p.onBody) == 0 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody+1))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > p.maxBody {
		return fmt.Errorf("response body exceeds %d bytes", p.maxBody)
	}
	for _, validate := range p.onBody {
		if err := validate(resp, body); err != nil {
			return err
		}
	}
	return nil
}

// WithHTTPStatusExpectation installs a custom status validation function.
func WithHTTPStatusExpectation(expect HTTPStatusExpectation) HTTPProbeOption {
	return func(p *httpProbe) {
		p.expect = expect
	}
}

// WithHTTPAllowedStatuses restricts the probe to succeed only for the provided
// status codes. With no codes the default 2xx expectation applies.
func WithHTTPAllowedStatuses(statuses ...int) HTTPProbeOption {
	allowed := slices.Clone(statuses)
	return func(p *httpProbe) {
		if len(allowed) == 0 {
			p.expect = defaultHTTPStatusExpectation
			return
		}
		p.expect = func(status int) bool {
			return slices.Contains(allowed, status)
		}
	}
}

// WithHTTPJSONBody encodes v as the request body and sets the JSON content type.
// Encoding happens on every run so the probe can be executed repeatedly.
func WithHTTPJSONBody(v any) HTTPProbeOption {
	return func(p *httpProbe) {
		p.mimeType = "application/json"
		p.encode = func() ([]byte, error) {
			return jsonutil.Marshal(v)
		}
	}
}

// WithHTTPTimeout bounds each run of the probe. Zero leaves the caller's
// context untouched.
func WithHTTPTimeout(timeout time.Duration) HTTPProbeOption {
	return func(p *httpProbe) {
		p.timeout = timeout
	}
}

// WithHTTPMaxBodyBytes sets how many body bytes are buffered for body
// validators. A larger body is reported as an error. Non-positive values keep
// the default.
func WithHTTPMaxBodyBytes(limit int64) HTTPProbeOption {
	return func(p *httpProbe) {
		p.maxBody = limit
	}
}

// WithHTTPRequestMutator registers a mutator that runs before the request is dispatched.
func WithHTTPRequestMutator(mutator HTTPRequestMutator) HTTPProbeOption {
	return func(p *httpProbe) {
		if mutator != nil {
			p.mutators = append(p.mutators, mutator)
		}
	}
}

// WithHTTPResponseValidator registers a validator that runs after a response is received.
func WithHTTPResponseValidator(validator HTTPResponseValidator) HTTPProbeOption {
	return func(p *httpProbe) {
		if validator != nil {
			p.onResp = append(p.onResp, validator)
		}
	}
}

// WithHTTPBodyValidator registers a validator that receives the buffered body.
// Body validators run after status and response validators pass.
func WithHTTPBodyValidator(validator HTTPBodyValidator) HTTPProbeOption {
	return func(p *httpProbe) {
		if validator != nil {
			p.onBody = append(p.onBody, validator)
		}
	}
}

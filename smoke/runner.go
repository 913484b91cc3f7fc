package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/oklog/ulid/v2"

	"github.com/drblury/apismoke/probe"
)

// DefaultBaseURL is the address probed when nothing else is configured.
const DefaultBaseURL = "http://localhost:3000"

// ErrInvalidBaseURL is returned by NewRunner when the base URL is not an
// absolute http(s) URL.
var ErrInvalidBaseURL = errors.New("smoke: base URL must be an absolute http(s) URL")

// Option configures a Runner.
type Option func(*Runner)

// Runner issues the probe sequence against a single base URL.
type Runner struct {
	baseURL  string
	client   probe.HTTPDoer
	out      io.Writer
	log      *slog.Logger
	timeout  time.Duration
	runID    string
	spec     *openapi3.T
	contract *contract
}

// Summary aggregates the results of one Run.
type Summary struct {
	Results []probe.Result
	Passed  int
	Failed  int
	Errored int
	// CreatedID is the identifier returned by the add-restaurant probe, if it passed.
	CreatedID string
}

// OK reports whether every probe passed.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errored == 0
}

func (s *Summary) add(res probe.Result) {
	s.Results = append(s.Results, res)
	switch res.Outcome {
	case probe.Passed:
		s.Passed++
	case probe.Failed:
		s.Failed++
	default:
		s.Errored++
	}
}

// NewRunner validates baseURL and applies the supplied options.
func NewRunner(baseURL string, opts ...Option) (*Runner, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	r := &Runner{
		baseURL: base,
		client:  http.DefaultClient,
		out:     os.Stdout,
		log:     slog.Default(),
		runID:   ulid.Make().String(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if r.spec != nil {
		c, err := newContract(r.spec)
		if err != nil {
			return nil, err
		}
		r.contract = c
	}
	return r, nil
}

// WithHTTPClient overrides the client used for every probe request.
func WithHTTPClient(client probe.HTTPDoer) Option {
	return func(r *Runner) {
		if client != nil {
			r.client = client
		}
	}
}

// WithOutput redirects the human-readable report. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger injects the slog logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithRequestTimeout bounds each probe request. Zero, the default, applies no
// timeout beyond the caller's context.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout >= 0 {
			r.timeout = timeout
		}
	}
}

// WithRunID sets the identifier sent in X-Request-ID headers. A ULID is
// generated when it is not set.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// WithContractValidation checks every response against the given OpenAPI
// document. Mismatches are reported as FAILED.
func WithContractValidation(doc *openapi3.T) Option {
	return func(r *Runner) {
		r.spec = doc
	}
}

// BaseURL returns the normalised base URL.
func (r *Runner) BaseURL() string {
	return r.baseURL
}

// RunID returns the identifier sent with every request of this runner.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes all probes in their fixed order and prints the report.
func (r *Runner) Run(ctx context.Context) Summary {
	r.printf("Testing against %s...\n\n", r.baseURL)

	var summary Summary
	summary.add(r.ParseSimple(ctx))
	summary.add(r.ParseSocial(ctx))
	summary.add(r.ParseNegative(ctx))
	summary.add(r.ListRestaurants(ctx))

	id, res := r.AddRestaurant(ctx)
	summary.add(res)
	summary.CreatedID = id

	r.printf("\nTest run complete.\n")

	r.log.Info("smoke run finished",
		"runId", r.runID,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"errored", summary.Errored,
	)
	return summary
}

func (r *Runner) report(res probe.Result) probe.Result {
	r.printf("%s\n", res.Line())
	if res.Outcome != probe.Passed {
		r.log.Debug("probe did not pass", "probe", res.Label, "outcome", res.Outcome.String(), "error", res.Err)
	}
	return res
}

func (r *Runner) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		r.log.Error("failed to write report", "error", err)
	}
}

package smoke

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/apismoke/apispec"
	"github.com/drblury/apismoke/jsonutil"
	"github.com/drblury/apismoke/probe"
	"github.com/drblury/apismoke/restaurant"
)

// fakeAPI is a minimal compliant implementation whose behaviour individual
// tests can override per route.
type fakeAPI struct {
	mu          sync.Mutex
	restaurants []restaurant.Restaurant
	requestIDs  []string

	parse       http.HandlerFunc
	list        http.HandlerFunc
	add         http.HandlerFunc
	simpleName  string
	echoName    string
	omitCreated bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
	f.mu.Unlock()

	switch {
	case r.URL.Path == ParsePath && r.Method == http.MethodPost:
		if f.parse != nil {
			f.parse(w, r)
			return
		}
		f.handleParse(w, r)
	case r.URL.Path == RestaurantsPath && r.Method == http.MethodGet:
		if f.list != nil {
			f.list(w, r)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, restaurant.ListResponse{Success: true, Restaurants: append([]restaurant.Restaurant{}, f.restaurants...)})
	case r.URL.Path == RestaurantsPath && r.Method == http.MethodPost:
		if f.add != nil {
			f.add(w, r)
			return
		}
		f.handleAdd(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) handleParse(w http.ResponseWriter, r *http.Request) {
	var req restaurant.ParseRequest
	if err := jsonutil.Decode(r.Body, &req); err != nil || len(strings.TrimSpace(req.Input)) < 2 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "input too short"})
		return
	}
	name := "Vitrina"
	if f.simpleName != "" {
		name = f.simpleName
	}
	if strings.Contains(req.Input, "instagram.com") {
		name = "Vitrina TLV"
	}
	writeJSON(w, http.StatusOK, restaurant.ParseResponse{Success: true, Restaurant: &restaurant.Candidate{Name: name}})
}

func (f *fakeAPI) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req restaurant.SaveRequest
	if err := jsonutil.Decode(r.Body, &req); err != nil || req.Restaurant == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Restaurant data is required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	created := req.Restaurant.Build("rest-"+string(rune('a'+len(f.restaurants))), fixedNow)
	if f.echoName != "" {
		created.Name = f.echoName
	}
	if f.omitCreated {
		created.ID = ""
	}
	f.restaurants = append([]restaurant.Restaurant{created}, f.restaurants...)
	writeJSON(w, http.StatusOK, restaurant.SaveResponse{Success: true, Restaurant: &created})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonutil.Encode(w, v)
}

func newTestRunner(t *testing.T, handler http.Handler, opts ...Option) (*Runner, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	out := &bytes.Buffer{}
	base := []Option{
		WithHTTPClient(server.Client()),
		WithOutput(out),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRunID("run-1"),
	}
	runner, err := NewRunner(server.URL, append(base, opts...)...)
	require.NoError(t, err)
	return runner, out
}

func reportLines(out *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestNewRunner(t *testing.T) {
	t.Run("trims trailing slash", func(t *testing.T) {
		r, err := NewRunner("http://localhost:3000/ ")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:3000", r.BaseURL())
		assert.NotEmpty(t, r.RunID())
	})

	for _, bad := range []string{"", "localhost:3000", "ftp://example.com", "http://", "::"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := NewRunner(bad)
			assert.ErrorIs(t, err, ErrInvalidBaseURL)
		})
	}
}

func TestRunner_RunAllPass(t *testing.T) {
	api := &fakeAPI{}
	runner, out := newTestRunner(t, api)

	summary := runner.Run(context.Background())

	assert.Equal(t, []string{
		"Testing against " + runner.BaseURL() + "...",
		"",
		"✅ Parse simple: PASSED",
		"✅ Parse social link: PASSED",
		"✅ Parse negative (short input): PASSED",
		"✅ List restaurants: PASSED (0 found)",
		"✅ Add restaurant: PASSED (ID: rest-a)",
		"",
		"Test run complete.",
	}, reportLines(out))

	assert.True(t, summary.OK())
	assert.Equal(t, 5, summary.Passed)
	assert.Equal(t, "rest-a", summary.CreatedID)
	require.Len(t, summary.Results, 5)
	assert.Equal(t, "0", summary.Results[3].Value)
}

func TestRunner_ParseSimple(t *testing.T) {
	t.Run("requires the exact name", func(t *testing.T) {
		runner, out := newTestRunner(t, &fakeAPI{simpleName: "vitrina"})

		res := runner.ParseSimple(context.Background())

		assert.Equal(t, probe.Failed, res.Outcome)
		assert.Contains(t, out.String(), `❌ Parse simple: FAILED - {"success":true,"restaurant":{"name":"vitrina"}}`)
	})

	t.Run("success false fails even with a name", func(t *testing.T) {
		api := &fakeAPI{parse: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "restaurant": map[string]string{"name": "Vitrina"}})
		}}
		runner, _ := newTestRunner(t, api)

		assert.Equal(t, probe.Failed, runner.ParseSimple(context.Background()).Outcome)
	})

	t.Run("missing restaurant fails", func(t *testing.T) {
		api := &fakeAPI{parse: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}}
		runner, _ := newTestRunner(t, api)

		assert.Equal(t, probe.Failed, runner.ParseSimple(context.Background()).Outcome)
	})

	t.Run("sends the literal input", func(t *testing.T) {
		var got restaurant.ParseRequest
		api := &fakeAPI{parse: func(w http.ResponseWriter, r *http.Request) {
			_ = jsonutil.Decode(r.Body, &got)
			writeJSON(w, http.StatusOK, restaurant.ParseResponse{Success: true, Restaurant: &restaurant.Candidate{Name: "Vitrina"}})
		}}
		runner, _ := newTestRunner(t, api)

		assert.Equal(t, probe.Passed, runner.ParseSimple(context.Background()).Outcome)
		assert.Equal(t, SimpleInput, got.Input)
	})
}

func TestRunner_ParseSocialOnlyChecksSuccess(t *testing.T) {
	api := &fakeAPI{parse: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "requiresSelection": true})
	}}
	runner, out := newTestRunner(t, api)

	res := runner.ParseSocial(context.Background())

	assert.Equal(t, probe.Passed, res.Outcome)
	assert.Equal(t, "✅ Parse social link: PASSED\n", out.String())
}

func TestRunner_ParseNegative(t *testing.T) {
	t.Run("passes on 400 regardless of body", func(t *testing.T) {
		api := &fakeAPI{parse: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, "not json at all")
		}}
		runner, _ := newTestRunner(t, api)

		assert.Equal(t, probe.Passed, runner.ParseNegative(context.Background()).Outcome)
	})

	t.Run("reports the unexpected status", func(t *testing.T) {
		api := &fakeAPI{parse: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}}
		runner, out := newTestRunner(t, api)

		res := runner.ParseNegative(context.Background())

		assert.Equal(t, probe.Failed, res.Outcome)
		assert.Equal(t, "❌ Parse negative: FAILED - Status 200\n", out.String())
	})

	t.Run("transport errors use the short label", func(t *testing.T) {
		out := &bytes.Buffer{}
		runner, err := NewRunner(DefaultBaseURL,
			WithHTTPClient(failingClient{err: errors.New("connection refused")}),
			WithOutput(out),
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)
		require.NoError(t, err)

		res := runner.ParseNegative(context.Background())

		assert.Equal(t, probe.Errored, res.Outcome)
		assert.Equal(t, LabelParseNegativeShort, res.Label)
		assert.True(t, strings.HasPrefix(out.String(), "❌ Parse negative: ERROR - "), out.String())
	})
}

func TestRunner_ListRestaurantsCountIsStable(t *testing.T) {
	api := &fakeAPI{restaurants: []restaurant.Restaurant{
		{ID: "1", Name: "Vitrina"},
		{ID: "2", Name: "Onza"},
	}}
	runner, out := newTestRunner(t, api)

	first := runner.ListRestaurants(context.Background())
	second := runner.ListRestaurants(context.Background())

	assert.Equal(t, probe.Passed, first.Outcome)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, "2", first.Value)
	assert.Equal(t, strings.Repeat("✅ List restaurants: PASSED (2 found)\n", 2), out.String())
}

func TestRunner_ListRestaurantsLargeCollection(t *testing.T) {
	notes := strings.Repeat("n", 200)
	api := &fakeAPI{}
	for i := range 6000 {
		api.restaurants = append(api.restaurants, restaurant.Restaurant{
			ID:    strconv.Itoa(i),
			Name:  "Vitrina " + strconv.Itoa(i),
			Notes: &notes,
		})
	}
	raw, err := jsonutil.Marshal(restaurant.ListResponse{Success: true, Restaurants: api.restaurants})
	require.NoError(t, err)
	require.Greater(t, len(raw), 1<<20)

	runner, out := newTestRunner(t, api)

	res := runner.ListRestaurants(context.Background())

	assert.Equal(t, probe.Passed, res.Outcome)
	assert.Equal(t, "6000", res.Value)
	assert.Equal(t, "✅ List restaurants: PASSED (6000 found)\n", out.String())
}

func TestRunner_AddRestaurant(t *testing.T) {
	t.Run("returns the created id", func(t *testing.T) {
		var got restaurant.SaveRequest
		api := &fakeAPI{}
		api.add = func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = jsonutil.Unmarshal(body, &got)
			r.Body = io.NopCloser(bytes.NewReader(body))
			api.handleAdd(w, r)
		}
		runner, _ := newTestRunner(t, api)

		id, res := runner.AddRestaurant(context.Background())

		assert.Equal(t, probe.Passed, res.Outcome)
		assert.Equal(t, "rest-a", id)
		require.NotNil(t, got.Restaurant)
		assert.Equal(t, TestRestaurantName, got.Restaurant.Name)
		assert.Equal(t, TestRestaurantCity, *got.Restaurant.City)
		assert.Equal(t, TestRestaurantCuisine, *got.Restaurant.Cuisine)
	})

	t.Run("echoed name must match exactly", func(t *testing.T) {
		runner, _ := newTestRunner(t, &fakeAPI{echoName: "api test restaurant"})

		id, res := runner.AddRestaurant(context.Background())

		assert.Equal(t, probe.Failed, res.Outcome)
		assert.Empty(t, id)
	})

	t.Run("identifier must be present", func(t *testing.T) {
		runner, _ := newTestRunner(t, &fakeAPI{omitCreated: true})

		id, res := runner.AddRestaurant(context.Background())

		assert.Equal(t, probe.Failed, res.Outcome)
		assert.Empty(t, id)
	})
}

func TestRunner_FailureDoesNotStopSequence(t *testing.T) {
	api := &fakeAPI{parse: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "<html>upstream exploded</html>")
	}}
	runner, out := newTestRunner(t, api)

	summary := runner.Run(context.Background())

	lines := reportLines(out)
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[2], "❌ Parse simple: ERROR - "), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "❌ Parse social link: ERROR - "), lines[3])
	assert.Equal(t, "❌ Parse negative: FAILED - Status 500", lines[4])
	assert.Equal(t, "✅ List restaurants: PASSED (0 found)", lines[5])
	assert.Equal(t, "✅ Add restaurant: PASSED (ID: rest-a)", lines[6])
	assert.Equal(t, "Test run complete.", lines[8])

	assert.False(t, summary.OK())
	assert.Equal(t, 2, summary.Errored)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Passed)
}

type failingClient struct{ err error }

func (c failingClient) Do(*http.Request) (*http.Response, error) {
	return nil, c.err
}

func TestRunner_TransportErrorsAreReported(t *testing.T) {
	out := &bytes.Buffer{}
	runner, err := NewRunner(DefaultBaseURL,
		WithHTTPClient(failingClient{err: errors.New("connection refused")}),
		WithOutput(out),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	summary := runner.Run(context.Background())

	assert.Equal(t, 5, summary.Errored)
	assert.Empty(t, summary.CreatedID)
	lines := reportLines(out)
	require.Len(t, lines, 9)
	for _, line := range lines[2:7] {
		assert.Contains(t, line, ": ERROR - ")
		assert.Contains(t, line, "connection refused")
	}
}

func TestRunner_SendsRequestIDs(t *testing.T) {
	api := &fakeAPI{}
	runner, _ := newTestRunner(t, api)

	runner.Run(context.Background())

	assert.Equal(t, []string{
		"run-1/parse-simple",
		"run-1/parse-social",
		"run-1/parse-negative",
		"run-1/list-restaurants",
		"run-1/add-restaurant",
	}, api.requestIDs)
}

func TestRunner_ContractValidation(t *testing.T) {
	doc, err := apispec.Load(context.Background())
	require.NoError(t, err)

	t.Run("compliant responses pass", func(t *testing.T) {
		runner, _ := newTestRunner(t, &fakeAPI{}, WithContractValidation(doc))
		assert.True(t, runner.Run(context.Background()).OK())
	})

	t.Run("schema mismatch fails", func(t *testing.T) {
		doc, err := apispec.Load(context.Background())
		require.NoError(t, err)
		api := &fakeAPI{list: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "restaurants": "none"})
		}}
		runner, out := newTestRunner(t, api, WithContractValidation(doc))

		res := runner.ListRestaurants(context.Background())

		assert.Equal(t, probe.Failed, res.Outcome)
		assert.Contains(t, out.String(), "FAILED - contract:")
	})

	t.Run("caller document keeps its servers", func(t *testing.T) {
		doc, err := apispec.Load(context.Background())
		require.NoError(t, err)
		want := doc.Servers
		require.NotEmpty(t, want)

		_, err = NewRunner(DefaultBaseURL, WithContractValidation(doc))
		require.NoError(t, err)

		assert.Equal(t, want, doc.Servers)
	})
}

package info

import (
	"net/http"

	"github.com/drblury/apismoke/restaurant"
)

const (
	// StatusOK is reported when every health check passes.
	StatusOK = "ok"
	// StatusMisconfigured is reported when at least one health check fails.
	StatusMisconfigured = "misconfigured"
)

// GetHealth runs every configured check and answers 200 with status "ok" or
// 503 with status "misconfigured".
func (ih *InfoHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	checks, err := ih.runChecks(r.Context())

	payload := restaurant.HealthResponse{Status: StatusOK, Checks: checks}
	status := http.StatusOK
	if err != nil {
		payload.Status = StatusMisconfigured
		status = http.StatusServiceUnavailable
		ih.Logger().WarnContext(r.Context(), "Health check failed", "error", err)
	}

	ih.RespondWithJSON(w, r, status, payload)
}

// GetVersion returns the structure provided by the configured InfoProvider.
func (ih *InfoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	payload := ih.infoProvider()
	if payload == nil {
		payload = map[string]string{}
	}
	ih.RespondWithJSON(w, r, http.StatusOK, payload)
}

// GetOpenAPIJSON streams the configured OpenAPI JSON document to the caller.
func (ih *InfoHandler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	bytes, err := ih.swaggerProvider()
	if err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to load swagger spec")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(bytes); err != nil {
		ih.Logger().WarnContext(r.Context(), "Failed to write swagger response", "error", err)
	}
}

package info

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/drblury/apismoke/responder"
	"github.com/drblury/apismoke/restaurant"
)

func quietResponder() *responder.Responder {
	return responder.NewResponder(responder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func decodeHealth(t *testing.T, body []byte) restaurant.HealthResponse {
	t.Helper()

	var payload restaurant.HealthResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode health payload: %v (body: %s)", err, string(body))
	}
	return payload
}

func decodeEnvelope(t *testing.T, body []byte) responder.ErrorEnvelope {
	t.Helper()

	var envelope responder.ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v (body: %s)", err, string(body))
	}
	return envelope
}

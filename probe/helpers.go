package probe

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// maxBodyBytes is the default cap on a response body buffered for validators.
// Larger bodies are rejected rather than handed on truncated.
const maxBodyBytes = 32 << 20

// AnyHTTPStatus accepts every status code. Use it when the response body,
// not the status, decides the outcome.
func AnyHTTPStatus(int) bool {
	return true
}

// Snippet returns body as a string truncated to at most limit bytes, marking
// the cut with "...". The cut never splits a UTF-8 encoded character.
func Snippet(body []byte, limit int) string {
	if limit <= 0 || len(body) <= limit {
		return string(body)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}

func defaultHTTPStatusExpectation(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func nilComponentError(name, component string) error {
	return fmt.Errorf("%s probe: %s is nil", name, component)
}

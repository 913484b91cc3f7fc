package responder

import (
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries a caller supplied correlation id. The smoke runner
// sends "<run id>/<probe>" here.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// traceID reuses the caller's X-Request-ID when present so client and server
// logs line up, and falls back to a fresh ULID.
func traceID(req *http.Request) string {
	if req != nil {
		id := strings.TrimSpace(req.Header.Get(RequestIDHeader))
		if id != "" && len(id) <= maxRequestIDLength {
			return id
		}
	}
	return ulid.Make().String()
}

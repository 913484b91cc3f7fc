package responder

import (
	"log/slog"
	"net/http"
)

// ErrorEnvelope is the JSON body written for every error response. It keeps
// the API's {"success": false, "error": ...} shape and adds a trace id.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	TraceID string `json:"traceId,omitempty"`
}

func (r *Responder) statusMetaFor(status int) statusMeta {
	meta, ok := r.statusMetadata[status]
	if !ok {
		meta = statusMeta{}
	}
	return normalizeStatusMeta(status, meta)
}

func (r *Responder) buildEnvelope(req *http.Request, err error, meta statusMeta) ErrorEnvelope {
	msg := meta.message
	if msg == "" {
		msg = err.Error()
	}
	return ErrorEnvelope{
		Success: false,
		Error:   msg,
		TraceID: traceID(req),
	}
}

func (r *Responder) logError(req *http.Request, meta statusMeta, err error, traceID string, status int, msgs []string) {
	logger := r.logger().With("error", err.Error(), "traceId", traceID, "status", status)
	if req != nil && req.URL != nil {
		logger = logger.With("method", req.Method, "path", req.URL.Path)
	}
	if len(msgs) > 0 {
		logger = logger.With("logMessages", msgs)
	}
	logger.Log(requestContext(req), meta.logLevel, meta.logMsg)
}

func normalizeStatusMeta(status int, meta statusMeta) statusMeta {
	if meta.logLevel == 0 {
		meta.logLevel = slog.LevelError
	}
	if meta.logMsg == "" {
		meta.logMsg = http.StatusText(status)
	}
	return meta
}

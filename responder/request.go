package responder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/drblury/apismoke/jsonutil"
)

// maxRequestBodyBytes bounds how much of a request body is decoded.
const maxRequestBodyBytes = 1 << 20

// ErrEmptyBody is reported when a request carries no JSON document.
var ErrEmptyBody = errors.New("request body is required")

// ReadRequestBody parses the request body into v and, on failure, writes a
// 400 error envelope. It returns false when the handler should stop.
func (r *Responder) ReadRequestBody(w http.ResponseWriter, req *http.Request, v any) bool {
	if err := r.decodeRequestBody(req, v); err != nil {
		r.HandleBadRequestError(w, req, err, "failed to parse request body")
		return false
	}
	return true
}

func (r *Responder) decodeRequestBody(req *http.Request, v any) error {
	if req == nil || req.Body == nil || req.Body == http.NoBody {
		return ErrEmptyBody
	}
	if err := jsonutil.Decode(io.LimitReader(req.Body, maxRequestBodyBytes), v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func requestContext(req *http.Request) context.Context {
	if req == nil {
		return context.Background()
	}
	return req.Context()
}

// Package apispec embeds the OpenAPI document describing the restaurant API.
// The same document drives request validation in the reference server and
// response contract checks in the smoke runner.
package apispec

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// Raw returns the embedded YAML document.
func Raw() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}

// Load parses and validates the embedded document. Each call returns a fresh
// *openapi3.T so callers may mutate it (for example, clearing Servers).
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("apispec: failed to load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("apispec: invalid document: %w", err)
	}
	return doc, nil
}

// JSON renders the embedded document as JSON for the /api/openapi.json endpoint.
func JSON(ctx context.Context) ([]byte, error) {
	doc, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("apispec: failed to encode document: %w", err)
	}
	return data, nil
}

// Package info exposes the health, version and OpenAPI document endpoints of
// the restaurant API.
//
// Health is computed from named probe checks: each check reports true or
// false under its name and the endpoint answers 503 with status
// "misconfigured" as soon as one of them fails.
//
// See ExampleInfoHandler_GetHealth for a runnable wiring.
package info

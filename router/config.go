package router

import "time"

// Config holds the tunables for the default middleware chain.
type Config struct {
	// Timeout bounds each request. Zero disables the timeout middleware.
	Timeout time.Duration
	CORS    CORSConfig
	// QuietdownRoutes are paths whose requests are not logged, such as health checks.
	QuietdownRoutes []string
	// HideHeaders are redacted from request logs.
	HideHeaders []string
}

// CORSConfig controls the CORS middleware. It is skipped when Origins is empty.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}

// Package router wraps http.ServeMux with OpenAPI request validation, CORS,
// timeouts, and request logging. ExampleNew_customOptions shows how to
// combine built-in and custom middlewares.
package router

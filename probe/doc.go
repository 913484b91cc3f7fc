// Package probe turns HTTP calls, database pings, and custom closures into
// checks whose errors classify as PASSED, FAILED, or ERROR. See
// ExampleNewHTTPProbe_withOptions and ExampleEvaluate for quick-start patterns.
package probe

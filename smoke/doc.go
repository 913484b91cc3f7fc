// Package smoke runs a fixed, ordered sequence of HTTP probes against a
// restaurant API and prints one PASSED/FAILED/ERROR line per probe.
//
// Probes are independent: a failure or transport error in one never stops
// the rest. The add-restaurant probe creates a real record on the server and
// nothing is cleaned up afterwards.
//
// See ExampleRunner_Run for the full report against a compliant server.
package smoke

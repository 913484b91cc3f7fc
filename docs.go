// Package apismoke bundles a smoke-test runner for the restaurant API
// together with a reference implementation of that API.
//
// The smoke package sends five fixed requests (parse a plain name, parse a
// social link, parse a too-short input, list restaurants, add a restaurant)
// and prints one PASSED, FAILED or ERROR line for each. The server package
// serves the same endpoints over a memory, PostgreSQL or MongoDB store so the
// runner has something to probe locally.
//
// # Packages
//
//   - smoke: the ordered probe sequence and its report.
//   - probe: HTTP and ping probe builders plus outcome classification.
//   - restaurant: wire types and the heuristic free-text parser.
//   - apispec: the embedded OpenAPI document used for request validation
//     and optional response contract checks.
//   - server, store, info, router, responder: the reference API.
//   - config: flag, environment, dotenv and YAML configuration.
//   - jsonutil: thin sonic wrappers.
//
// # Quick Start
//
//	runner, err := smoke.NewRunner("http://localhost:3000")
//	if err != nil {
//	    return err
//	}
//	summary := runner.Run(ctx)
//	if !summary.OK() {
//	    os.Exit(1)
//	}
//
// The apismoke command wraps this with configuration, and restaurantapi
// serves the reference API.
package apismoke

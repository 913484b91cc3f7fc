package probe

import (
	"errors"
	"fmt"
)

// Outcome is the classification of a single probe run.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "PASSED"
	case Failed:
		return "FAILED"
	case Errored:
		return "ERROR"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Marker is the glyph printed in front of a result line.
func (o Outcome) Marker() string {
	if o == Passed {
		return "✅"
	}
	return "❌"
}

// AssertionError marks a well-formed response whose content did not match
// what the probe expected. Any other error is a transport or decoding problem.
type AssertionError struct {
	Detail string
}

func (e *AssertionError) Error() string {
	return e.Detail
}

// Failf builds an AssertionError from a format string.
func Failf(format string, args ...any) error {
	return &AssertionError{Detail: fmt.Sprintf(format, args...)}
}

// Classify maps a probe error onto an Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return Passed
	}
	var assertion *AssertionError
	if errors.As(err, &assertion) {
		return Failed
	}
	return Errored
}

// Result is the reported outcome of one probe.
type Result struct {
	Label   string
	Outcome Outcome
	// Detail is appended to the line: a note in parentheses for passes, the
	// mismatch for failures, the error text for errors.
	Detail string
	// Value carries data a probe surfaces to its caller, such as a created id.
	Value string
	Err   error
}

// Evaluate classifies err into a Result for the labelled probe.
func Evaluate(label string, err error) Result {
	res := Result{Label: label, Outcome: Classify(err), Err: err}
	switch res.Outcome {
	case Failed:
		var assertion *AssertionError
		errors.As(err, &assertion)
		res.Detail = assertion.Detail
	case Errored:
		res.Detail = err.Error()
	}
	return res
}

// Line renders the result as a single human-readable report line.
func (r Result) Line() string {
	head := fmt.Sprintf("%s %s: %s", r.Outcome.Marker(), r.Label, r.Outcome)
	switch {
	case r.Outcome == Passed && r.Detail != "":
		return fmt.Sprintf("%s (%s)", head, r.Detail)
	case r.Outcome != Passed && r.Detail != "":
		return fmt.Sprintf("%s - %s", head, r.Detail)
	default:
		return head
	}
}

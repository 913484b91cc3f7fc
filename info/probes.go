package info

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// runChecks executes every check, even after a failure, so the health payload
// reports the state of each dependency. The returned error joins all failures.
func (ih *InfoHandler) runChecks(ctx context.Context) (map[string]bool, error) {
	results := make(map[string]bool, len(ih.checks))
	if len(ih.checks) == 0 {
		return results, nil
	}

	timeout := ih.probeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	var errs []error
	for _, check := range ih.checks {
		err := runCheck(ctx, timeout, check)
		results[check.Name] = err == nil
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

func runCheck(ctx context.Context, timeout time.Duration, check Check) error {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := check.Probe(probeCtx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("check %q timed out after %s", check.Name, timeout)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("check %q was cancelled", check.Name)
	default:
		return fmt.Errorf("check %q failed: %w", check.Name, err)
	}
}

func filterChecks(checks []Check) []Check {
	if len(checks) == 0 {
		return nil
	}

	filtered := make([]Check, 0, len(checks))
	for _, check := range checks {
		if check.Name != "" && check.Probe != nil {
			filtered = append(filtered, check)
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return filtered
}

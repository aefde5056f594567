package operations

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Concurrency limits for bulk operations
const (
	DefaultDeleteConcurrency  = 5
	DefaultExecuteConcurrency = 10
)

// Target identifies one resource of a bulk operation. Name is informational.
type Target struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (t Target) String() string {
	if t.Name == "" {
		return t.ID
	}
	return fmt.Sprintf("%s (ID: %s)", t.Name, t.ID)
}

// TargetsFromIDs wraps bare ids as targets
func TargetsFromIDs(ids []string) []Target {
	targets := make([]Target, len(ids))
	for i, id := range ids {
		targets[i] = Target{ID: id}
	}
	return targets
}

// BatchResult contains the results of a bulk operation, in request order
type BatchResult struct {
	Action     string       `json:"action"`
	Requested  int          `json:"requested"`
	Successful []BatchItem  `json:"successful"`
	Failed     []BatchError `json:"failed"`
}

// BatchItem is one successful item of a bulk operation
type BatchItem struct {
	Target
	ExecutionID string `json:"execution_id,omitempty"`
}

// BatchError contains information about a failed item
type BatchError struct {
	Target
	Reason string `json:"error"`
	Action string `json:"-"`
	Err    error  `json:"-"`
}

// Error implements the error interface
func (e BatchError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Action, e.Target, e.Err)
}

func (e BatchError) Unwrap() error {
	return e.Err
}

// ErrorOrNil aggregates every failure into one error, or returns nil
func (r BatchResult) ErrorOrNil() error {
	var result *multierror.Error
	for _, failure := range r.Failed {
		result = multierror.Append(result, failure)
	}
	return result.ErrorOrNil()
}

// runBatch calls fn for every target with at most limit calls in flight.
// Individual failures never stop the batch.
func runBatch(ctx context.Context, action string, targets []Target, limit int, fn func(context.Context, Target) (string, error)) BatchResult {
	result := BatchResult{
		Action:    action,
		Requested: len(targets),
	}

	if len(targets) == 0 {
		return result
	}

	type outcome struct {
		value string
		err   error
	}
	outcomes := make([]outcome, len(targets))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, target := range targets {
		g.Go(func() error {
			value, err := fn(ctx, target)
			outcomes[i] = outcome{value: value, err: err}
			return nil // Don't stop on individual errors
		})
	}

	g.Wait()

	for i, out := range outcomes {
		if out.err != nil {
			result.Failed = append(result.Failed, BatchError{
				Target: targets[i],
				Reason: out.err.Error(),
				Action: action,
				Err:    out.err,
			})
			continue
		}
		result.Successful = append(result.Successful, BatchItem{Target: targets[i], ExecutionID: out.value})
	}

	return result
}

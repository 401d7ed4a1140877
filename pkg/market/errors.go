package market

import (
	"fmt"
)

// ErrInvalidShape is returned when market input dimensions are malformed or
// mismatched, or when a supply/budget entry is non-positive. Expected and
// Actual are omitted from the message when both are zero.
type ErrInvalidShape struct {
	Field    string // The offending field, e.g., "supply"
	Expected int
	Actual   int
	Message  string // An optional message explaining the violation
}

func (err *ErrInvalidShape) Error() string {
	s := fmt.Sprintf("field %q has invalid shape", err.Field)
	if err.Expected != 0 || err.Actual != 0 {
		s += fmt.Sprintf("; expected length %d, got %d", err.Expected, err.Actual)
	}
	if err.Message != "" {
		s += "; " + err.Message
	}
	return s
}

// ErrInfeasibleResult is returned when a solver reported success but its values
// violate market feasibility beyond tolerance: a resource oversupplied beyond
// the clearing tolerance, or an allocation/price entry more negative than the
// clipping tolerance permits. It indicates a numerical or modeling
// inconsistency and is never silently accepted.
type ErrInfeasibleResult struct {
	Resource  int     // Index of the offending resource
	Excess    float64 // Magnitude of the violation
	Tolerance float64 // The tolerance it was checked against
	Message   string
}

func (err *ErrInfeasibleResult) Error() string {
	return fmt.Sprintf(
		"infeasible result for resource %d: %s (violation %g exceeds tolerance %g)",
		err.Resource, err.Message, err.Excess, err.Tolerance,
	)
}

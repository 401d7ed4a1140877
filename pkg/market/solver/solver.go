// Package solver defines the interface between the Eisenberg–Gale program and
// the numerical engines that solve it, together with the solver failure
// taxonomy. Engines are stateless per call: a single Engine value may be shared
// by concurrent solves.
package solver

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/fisherproject/fisher/internal/common/marketerrors"
	"github.com/fisherproject/fisher/pkg/market/eg"
)

// Engine solves Eisenberg–Gale programs. Implementations must respect ctx:
// on cancellation or deadline expiry they return *ErrTimeout and never partial
// values.
type Engine interface {
	// Name identifies the engine in errors and logs.
	Name() string
	// Solve returns the primal allocation and the dual prices of the supply
	// constraints at the optimum of p.
	Solve(ctx context.Context, p *eg.Program) (*Solution, error)
}

// Relaxable is implemented by engines that can produce a copy of themselves
// with the convergence tolerance loosened by a factor. Used for the optional
// single re-attempt after non-convergence.
type Relaxable interface {
	Relaxed(factor float64) Engine
}

// Solution holds the raw output of an engine, before extraction and validation.
type Solution struct {
	// Allocation is the n×m primal solution.
	Allocation *mat.Dense
	// Prices holds the dual value of each per-resource supply constraint.
	Prices *mat.VecDense
	// Objective is the attained objective value.
	Objective float64
	// Iterations the engine performed.
	Iterations int
}

// FailureReason classifies engine failures.
type FailureReason string

const (
	// ReasonNonConvergence: the iteration limit was reached before the
	// convergence criterion was met.
	ReasonNonConvergence FailureReason = "non-convergence"
	// ReasonInfeasible: the engine determined the program has no feasible point.
	ReasonInfeasible FailureReason = "infeasible"
	// ReasonUnbounded: the engine determined the objective is unbounded above.
	ReasonUnbounded FailureReason = "unbounded"
)

// ErrFailure indicates that an engine could not produce a solution.
type ErrFailure struct {
	Engine     string
	Reason     FailureReason
	Iterations int
	Message    string // Optional
}

func (err *ErrFailure) Error() string {
	s := fmt.Sprintf("engine %q failed after %d iterations: %s", err.Engine, err.Iterations, err.Reason)
	if err.Message != "" {
		s += "; " + err.Message
	}
	return s
}

// ErrTimeout indicates that the solve was cancelled or exceeded its deadline.
// Unwrap returns the context error, so errors.Is(err, context.DeadlineExceeded)
// works as expected.
type ErrTimeout struct {
	Engine     string
	Iterations int
	Err        error
}

func (err *ErrTimeout) Error() string {
	return fmt.Sprintf("engine %q timed out after %d iterations: %v", err.Engine, err.Iterations, err.Err)
}

func (err *ErrTimeout) Unwrap() error {
	return err.Err
}

// Config holds the numerical parameters common to all engines. Zero values
// select engine-specific defaults.
type Config struct {
	// MaxIterations bounds the number of iterations before the engine reports
	// non-convergence.
	MaxIterations int
	// Tolerance is the convergence criterion threshold.
	Tolerance float64
}

// Resolve validates c and substitutes the given engine defaults for zero values.
func (c Config) Resolve(defaultMaxIterations int, defaultTolerance float64) (Config, error) {
	if c.MaxIterations < 0 {
		return Config{}, &marketerrors.ErrInvalidArgument{
			Name:    "MaxIterations",
			Value:   c.MaxIterations,
			Message: "outside allowed range [0, Inf)",
		}
	}
	if c.Tolerance < 0 {
		return Config{}, &marketerrors.ErrInvalidArgument{
			Name:    "Tolerance",
			Value:   c.Tolerance,
			Message: "outside allowed range [0, Inf)",
		}
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.Tolerance == 0 {
		c.Tolerance = defaultTolerance
	}
	return c, nil
}

// Package market computes competitive equilibria for linear-utility Fisher
// markets. Given per-player valuations over divisible resources, budgets and
// supplies, it produces an allocation and per-resource prices such that no
// resource is oversupplied, every player spends its budget optimally, and the
// allocation is proportionally fair across budgets.
//
// The computation formulates the Eisenberg–Gale convex program (pkg/market/eg),
// delegates it to a numerical engine (pkg/market/solver) and validates the
// returned primal/dual values. Each call is independent: the package holds no
// state between solves and a single Solver may be used concurrently.
package market

import (
	"context"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fisherproject/fisher/internal/common/logging"
	"github.com/fisherproject/fisher/internal/common/marketerrors"
	"github.com/fisherproject/fisher/pkg/market/eg"
	"github.com/fisherproject/fisher/pkg/market/solver"
	"github.com/fisherproject/fisher/pkg/market/solver/propresponse"
)

// Parameters configures result validation and retry behavior. Zero values
// select the documented defaults.
type Parameters struct {
	// ClipTolerance bounds how negative an allocation or price entry may be and
	// still be clipped to zero, relative to the resource's supply (allocations)
	// or the price scale (prices). Default 1e-6.
	ClipTolerance float64
	// ClearingTolerance bounds by how much a resource may be oversupplied,
	// relative to its supply. Default 1e-6.
	ClearingTolerance float64
	// RetryRelaxed enables a single re-attempt with the engine tolerance
	// relaxed by RelaxationFactor if the engine fails to converge. The
	// re-attempt is logged; timeouts are never retried.
	RetryRelaxed bool
	// RelaxationFactor for the re-attempt. Default 100.
	RelaxationFactor float64
}

// DefaultParameters returns the documented defaults.
func DefaultParameters() Parameters {
	return Parameters{
		ClipTolerance:     1e-6,
		ClearingTolerance: 1e-6,
		RelaxationFactor:  100,
	}
}

func (p Parameters) withDefaults() Parameters {
	defaults := DefaultParameters()
	if p.ClipTolerance == 0 {
		p.ClipTolerance = defaults.ClipTolerance
	}
	if p.ClearingTolerance == 0 {
		p.ClearingTolerance = defaults.ClearingTolerance
	}
	if p.RelaxationFactor == 0 {
		p.RelaxationFactor = defaults.RelaxationFactor
	}
	return p
}

// Solver computes equilibria with a fixed engine and parameters. Safe for
// concurrent use; each Solve call is fully independent.
type Solver struct {
	engine solver.Engine
	params Parameters
	log    *logging.Logger
}

// NewSolver returns a Solver using the given engine, or the default
// proportional-response engine if engine is nil.
func NewSolver(engine solver.Engine, params Parameters) (*Solver, error) {
	if params.ClipTolerance < 0 {
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:    "ClipTolerance",
			Value:   params.ClipTolerance,
			Message: "outside allowed range [0, Inf)",
		})
	}
	if params.ClearingTolerance < 0 {
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:    "ClearingTolerance",
			Value:   params.ClearingTolerance,
			Message: "outside allowed range [0, Inf)",
		})
	}
	if params.RelaxationFactor < 0 {
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:    "RelaxationFactor",
			Value:   params.RelaxationFactor,
			Message: "outside allowed range [0, Inf)",
		})
	}
	if engine == nil {
		engine = propresponse.Default()
	}
	return &Solver{
		engine: engine,
		params: params.withDefaults(),
		log:    logging.StdLogger().WithField("component", "market"),
	}, nil
}

// WithLogger returns a copy of the solver that logs to l.
func (s *Solver) WithLogger(l *logging.Logger) *Solver {
	return &Solver{engine: s.engine, params: s.params, log: l}
}

// Solve computes the competitive equilibrium of m. On any failure no partial
// result is returned. The context bounds the numerical solve; on expiry the
// error is a *solver.ErrTimeout.
func (s *Solver) Solve(ctx context.Context, m Market) (*Equilibrium, error) {
	normalized, err := m.Normalized()
	if err != nil {
		return nil, err
	}

	n := normalized.NumPlayers()
	numResources := normalized.NumResources()
	valuations := mat.NewDense(n, numResources, nil)
	for i, row := range normalized.Valuations {
		valuations.SetRow(i, row)
	}
	program, err := eg.NewProgram(
		valuations,
		mat.NewVecDense(numResources, normalized.Supply),
		mat.NewVecDense(n, normalized.Budgets),
	)
	if err != nil {
		return nil, err
	}

	sol, err := s.solve(ctx, program, normalized.Label)
	if err != nil {
		return nil, err
	}

	allocation, prices, err := extractEquilibrium(program, sol, s.params, s.log)
	if err != nil {
		return nil, err
	}
	utilities, err := Utilities(normalized.Valuations, allocation)
	if err != nil {
		return nil, err
	}
	return &Equilibrium{
		Allocation: allocation,
		Prices:     prices,
		Utilities:  utilities,
	}, nil
}

// solve invokes the engine, re-attempting once with relaxed tolerance on
// non-convergence if configured. Timeouts are surfaced immediately.
func (s *Solver) solve(ctx context.Context, program *eg.Program, label string) (*solver.Solution, error) {
	engine := s.engine
	attempts := uint(1)
	if _, ok := engine.(solver.Relaxable); ok && s.params.RetryRelaxed {
		attempts = 2
	}

	var sol *solver.Solution
	err := retry.Do(
		func() error {
			rv, err := engine.Solve(ctx, program)
			if err != nil {
				return err
			}
			sol = rv
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var failure *solver.ErrFailure
			return errors.As(err, &failure) && failure.Reason == solver.ReasonNonConvergence
		}),
		retry.OnRetry(func(attempt uint, err error) {
			s.log.WithFields(map[string]any{
				"market": label,
				"engine": engine.Name(),
			}).WithError(err).Warnf(
				"engine did not converge; re-attempting once with tolerance relaxed by a factor of %g",
				s.params.RelaxationFactor,
			)
			engine = engine.(solver.Relaxable).Relaxed(s.params.RelaxationFactor)
		}),
	)
	if err != nil {
		return nil, err
	}
	return sol, nil
}

// Solve computes the competitive equilibrium of m with the default engine and
// parameters.
func Solve(ctx context.Context, m Market) (*Equilibrium, error) {
	s, err := NewSolver(nil, DefaultParameters())
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, m)
}

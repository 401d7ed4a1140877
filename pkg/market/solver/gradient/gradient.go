// Package gradient implements an Eisenberg–Gale engine based on projected
// gradient ascent over the allocation variables. The ascent direction is scaled
// by a pluggable first-order optimisation.Optimiser (plain gradient descent by
// default, Nesterov momentum as an alternative), and after every step each
// resource column is projected back onto its feasible set
// {x >= 0, sum_i x_ij <= s_j}.
//
// Dual prices are recovered from the KKT conditions at the optimum: for a fully
// allocated resource the price equals the largest budget-weighted marginal
// utility per unit, p_j = max_i b_i * V_ij / u_i; a resource with slack
// capacity has price zero.
//
// propresponse is the better default for well-conditioned markets; this engine
// exists as an independent cross-check and for experimenting with step rules.
package gradient

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fisherproject/fisher/internal/common/linalg"
	"github.com/fisherproject/fisher/internal/common/optimisation"
	"github.com/fisherproject/fisher/internal/common/optimisation/descent"
	"github.com/fisherproject/fisher/pkg/market/eg"
	"github.com/fisherproject/fisher/pkg/market/solver"
)

const (
	DefaultMaxIterations = 500_000
	// DefaultTolerance is the convergence threshold on the largest per-entry
	// displacement of the allocation within one projected step.
	DefaultTolerance = 1e-10
	// DefaultStepSize for the default descent optimiser. Gradients are of the
	// order of the normalized prices, so a small constant step is adequate for
	// the market sizes this engine targets.
	DefaultStepSize = 0.01

	// A resource is considered fully allocated when its slack is below this
	// fraction of its supply; only then does it carry a positive price.
	slackFraction = 1e-6

	ctxCheckInterval = 256
)

// Engine runs projected gradient ascent. newOptimiser is invoked once per
// Solve call, so a single Engine is safe for concurrent use even with stateful
// optimisers such as Nesterov.
type Engine struct {
	cfg          solver.Config
	newOptimiser func() optimisation.Optimiser
}

// New returns an engine with the given configuration. A nil newOptimiser
// selects plain gradient descent with DefaultStepSize.
func New(cfg solver.Config, newOptimiser func() optimisation.Optimiser) (*Engine, error) {
	cfg, err := cfg.Resolve(DefaultMaxIterations, DefaultTolerance)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if newOptimiser == nil {
		newOptimiser = func() optimisation.Optimiser {
			return descent.MustNew(DefaultStepSize)
		}
	}
	return &Engine{cfg: cfg, newOptimiser: newOptimiser}, nil
}

func MustNew(cfg solver.Config, newOptimiser func() optimisation.Optimiser) *Engine {
	engine, err := New(cfg, newOptimiser)
	if err != nil {
		panic(err)
	}
	return engine
}

func (e *Engine) Name() string {
	return "gradient"
}

// Relaxed returns a copy of the engine with the convergence tolerance loosened
// by the given factor. The optimiser factory is shared with the original.
func (e *Engine) Relaxed(factor float64) solver.Engine {
	return MustNew(solver.Config{
		MaxIterations: e.cfg.MaxIterations,
		Tolerance:     e.cfg.Tolerance * factor,
	}, e.newOptimiser)
}

func (e *Engine) Solve(ctx context.Context, p *eg.Program) (*solver.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(&solver.ErrTimeout{Engine: e.Name(), Err: err})
	}

	n := p.NumPlayers()
	m := p.NumResources()
	valuations := p.Valuations()
	supply := p.Supply()
	budgets := p.Budgets()

	opt := e.newOptimiser()
	opt.Extend(n * m)

	// Start from the uniform split of every resource; every non-degenerate
	// player has positive utility there.
	x := mat.NewVecDense(n*m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			x.SetVec(i*m+j, supply.AtVec(j)/float64(n))
		}
	}

	gradient := mat.NewVecDense(n*m, nil)
	utilities := make([]float64, n)
	previous := make([]float64, n*m)
	column := make([]float64, n)

	computeUtilities := func() bool {
		for i := 0; i < n; i++ {
			u := 0.0
			for j := 0; j < m; j++ {
				u += valuations.At(i, j) * x.AtVec(i*m+j)
			}
			utilities[i] = u
			if u <= 0 {
				return false
			}
		}
		return true
	}

	converged := false
	iterations := 0
	for it := 1; it <= e.cfg.MaxIterations; it++ {
		iterations = it
		if it%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WithStack(&solver.ErrTimeout{Engine: e.Name(), Iterations: it, Err: err})
			}
		}

		if !computeUtilities() {
			return nil, errors.WithStack(&solver.ErrFailure{
				Engine:     e.Name(),
				Reason:     solver.ReasonNonConvergence,
				Iterations: it,
				Message:    "a player's utility collapsed to zero; reduce the step size",
			})
		}

		// Maximization: the optimiser subtracts the gradient, so negate.
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				gradient.SetVec(i*m+j, -budgets.AtVec(i)*valuations.At(i, j)/utilities[i])
			}
		}
		copy(previous, x.RawVector().Data)
		opt.Update(x, x, gradient)

		// Project each resource column back onto {x >= 0, sum <= supply}.
		for j := 0; j < m; j++ {
			for i := 0; i < n; i++ {
				column[i] = x.AtVec(i*m + j)
			}
			linalg.ProjectCappedSimplex(column, supply.AtVec(j))
			for i := 0; i < n; i++ {
				x.SetVec(i*m+j, column[i])
			}
		}

		delta := 0.0
		for k := 0; k < n*m; k++ {
			if d := math.Abs(x.AtVec(k) - previous[k]); d > delta {
				delta = d
			}
		}
		if delta <= e.cfg.Tolerance {
			converged = true
			break
		}
	}
	if !converged {
		return nil, errors.WithStack(&solver.ErrFailure{
			Engine:     e.Name(),
			Reason:     solver.ReasonNonConvergence,
			Iterations: iterations,
		})
	}

	if !computeUtilities() {
		return nil, errors.WithStack(&solver.ErrFailure{
			Engine:     e.Name(),
			Reason:     solver.ReasonNonConvergence,
			Iterations: iterations,
			Message:    "converged to a point with zero utility for some player",
		})
	}

	allocation := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			allocation.Set(i, j, x.AtVec(i*m+j))
		}
	}

	// KKT price recovery.
	prices := mat.NewVecDense(m, nil)
	columnSums := linalg.ColumnSums(allocation)
	for j := 0; j < m; j++ {
		s := supply.AtVec(j)
		if s-columnSums.AtVec(j) > slackFraction*s {
			prices.SetVec(j, 0)
			continue
		}
		price := 0.0
		for i := 0; i < n; i++ {
			if v := budgets.AtVec(i) * valuations.At(i, j) / utilities[i]; v > price {
				price = v
			}
		}
		prices.SetVec(j, price)
	}

	return &solver.Solution{
		Allocation: allocation,
		Prices:     prices,
		Objective:  p.Objective(allocation),
		Iterations: iterations,
	}, nil
}

// Package propresponse implements the default Eisenberg–Gale engine using
// proportional response dynamics (Wu & Zhang; Birnbaum, Devanur & Xiao).
//
// Each player repeatedly splits its budget into per-resource bids in proportion
// to the utility it derived from each resource in the previous round, and each
// resource is allocated pro rata to the bids placed on it. For linear-utility
// Fisher markets this iteration is a mirror-descent form of the Eisenberg–Gale
// program and converges to the market equilibrium; the converged per-resource
// bid totals are exactly the equilibrium prices. The iteration is deterministic,
// so repeated solves of the same program return identical results.
package propresponse

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fisherproject/fisher/pkg/market/eg"
	"github.com/fisherproject/fisher/pkg/market/solver"
)

const (
	// DefaultMaxIterations bounds the dynamics. Iterations cost O(n*m) each.
	DefaultMaxIterations = 200_000
	// DefaultTolerance is the convergence threshold on the largest
	// budget-relative bid change between rounds.
	DefaultTolerance = 1e-10

	// How often the context is polled for cancellation.
	ctxCheckInterval = 256
)

// Engine runs proportional response dynamics. Safe for concurrent use; all
// iteration state is local to Solve.
type Engine struct {
	cfg solver.Config
}

func New(cfg solver.Config) (*Engine, error) {
	cfg, err := cfg.Resolve(DefaultMaxIterations, DefaultTolerance)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Engine{cfg: cfg}, nil
}

func MustNew(cfg solver.Config) *Engine {
	engine, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Default returns an engine with default configuration.
func Default() *Engine {
	return MustNew(solver.Config{})
}

func (e *Engine) Name() string {
	return "propresponse"
}

// Relaxed returns a copy of the engine with the convergence tolerance loosened
// by the given factor.
func (e *Engine) Relaxed(factor float64) solver.Engine {
	return MustNew(solver.Config{
		MaxIterations: e.cfg.MaxIterations,
		Tolerance:     e.cfg.Tolerance * factor,
	})
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

	// Work in the unit-supply market: scaled_ij is the utility player i derives
	// from the whole supply of resource j. Allocations and prices are mapped
	// back to per-unit terms at the end.
	scaled := make([]float64, n*m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			scaled[i*m+j] = valuations.At(i, j) * supply.AtVec(j)
		}
	}

	// Initial bids split each budget in proportion to scaled valuations. Rows
	// with zero scaled sum are impossible here: the program builder rejects
	// degenerate players.
	bids := make([]float64, n*m)
	for i := 0; i < n; i++ {
		rowSum := 0.0
		for j := 0; j < m; j++ {
			rowSum += scaled[i*m+j]
		}
		for j := 0; j < m; j++ {
			bids[i*m+j] = budgets.AtVec(i) * scaled[i*m+j] / rowSum
		}
	}

	bidTotals := make([]float64, m)   // price of the whole supply of each resource
	fractions := make([]float64, n*m) // share of each resource won by each player
	utilities := make([]float64, n)
	newBids := make([]float64, n*m)

	round := func() {
		for j := range bidTotals {
			bidTotals[j] = 0
		}
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				bidTotals[j] += bids[i*m+j]
			}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				if bidTotals[j] > 0 {
					fractions[i*m+j] = bids[i*m+j] / bidTotals[j]
				} else {
					fractions[i*m+j] = 0
				}
			}
		}
		for i := 0; i < n; i++ {
			u := 0.0
			for j := 0; j < m; j++ {
				u += scaled[i*m+j] * fractions[i*m+j]
			}
			utilities[i] = u
		}
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

		round()
		delta := 0.0
		for i := 0; i < n; i++ {
			b := budgets.AtVec(i)
			for j := 0; j < m; j++ {
				newBids[i*m+j] = b * scaled[i*m+j] * fractions[i*m+j] / utilities[i]
				if d := math.Abs(newBids[i*m+j]-bids[i*m+j]) / b; d > delta {
					delta = d
				}
			}
		}
		copy(bids, newBids)
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

	// Recompute the allocation implied by the final bids and map back from the
	// unit-supply market.
	round()
	allocation := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			allocation.Set(i, j, fractions[i*m+j]*supply.AtVec(j))
		}
	}
	prices := mat.NewVecDense(m, nil)
	for j := 0; j < m; j++ {
		prices.SetVec(j, bidTotals[j]/supply.AtVec(j))
	}
	objective := 0.0
	for i := 0; i < n; i++ {
		objective += budgets.AtVec(i) * math.Log(utilities[i])
	}

	return &solver.Solution{
		Allocation: allocation,
		Prices:     prices,
		Objective:  objective,
		Iterations: iterations,
	}, nil
}

// Package eg constructs the Eisenberg–Gale convex program for a linear-utility
// Fisher market:
//
//	maximize   sum_i b_i * log(sum_j V_ij * x_ij)
//	subject to x_ij >= 0 for all i, j
//	           sum_i x_ij <= s_j for every resource j
//
// where V is the valuation matrix, s the resource supply and b the player
// budgets. The optimum of this program is a competitive equilibrium: the primal
// solution is the equilibrium allocation and the dual values of the supply
// constraints are the equilibrium prices.
package eg

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fisherproject/fisher/internal/common/marketerrors"
)

// ErrDegenerateMarket indicates that some player cannot achieve positive
// utility under any feasible allocation, so the log objective is undefined.
type ErrDegenerateMarket struct {
	Player int // Index of the first such player
}

func (err *ErrDegenerateMarket) Error() string {
	return fmt.Sprintf(
		"player %d values no resource with positive supply; the log-utility objective is undefined",
		err.Player,
	)
}

// Program is an immutable Eisenberg–Gale convex program. Construct with
// NewProgram; the zero value is not usable.
//
// Budgets are normalized to sum to one on construction. Only budget ratios
// carry meaning for the equilibrium, and normalizing makes both the optimal
// allocation and the dual prices invariant under uniform budget rescaling.
type Program struct {
	valuations *mat.Dense
	supply     *mat.VecDense
	budgets    *mat.VecDense
}

// NewProgram validates the market data and constructs the program. Inputs are
// copied; the caller may reuse its matrices afterwards.
//
// A player whose valuation row has no overlap with positively-supplied
// resources can never reach positive utility; NewProgram rejects such markets
// with ErrDegenerateMarket rather than substituting a utility floor.
func NewProgram(valuations *mat.Dense, supply, budgets *mat.VecDense) (*Program, error) {
	if valuations == nil {
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:  "valuations",
			Value: nil,
		})
	}
	numPlayers, numResources := valuations.Dims()
	if supply == nil || supply.Len() != numResources {
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:    "supply",
			Value:   supply,
			Message: fmt.Sprintf("expected length %d", numResources),
		})
	}
	if budgets == nil || budgets.Len() != numPlayers {
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:    "budgets",
			Value:   budgets,
			Message: fmt.Sprintf("expected length %d", numPlayers),
		})
	}
	for j := 0; j < numResources; j++ {
		if v := supply.AtVec(j); !(v > 0) || math.IsInf(v, 1) {
			return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
				Name:    "supply",
				Value:   v,
				Message: fmt.Sprintf("supply of resource %d must be positive and finite", j),
			})
		}
	}
	budgetSum := 0.0
	for i := 0; i < numPlayers; i++ {
		v := budgets.AtVec(i)
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
				Name:    "budgets",
				Value:   v,
				Message: fmt.Sprintf("budget of player %d must be positive and finite", i),
			})
		}
		budgetSum += v
	}
	for i := 0; i < numPlayers; i++ {
		achievable := 0.0
		for j := 0; j < numResources; j++ {
			v := valuations.At(i, j)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
					Name:    "valuations",
					Value:   v,
					Message: fmt.Sprintf("valuation of player %d for resource %d must be non-negative and finite", i, j),
				})
			}
			achievable += v * supply.AtVec(j)
		}
		if achievable == 0 {
			return nil, errors.WithStack(&ErrDegenerateMarket{Player: i})
		}
	}

	normalized := mat.NewVecDense(numPlayers, nil)
	normalized.ScaleVec(1/budgetSum, budgets)
	return &Program{
		valuations: mat.DenseCopyOf(valuations),
		supply:     mat.VecDenseCopyOf(supply),
		budgets:    normalized,
	}, nil
}

// NumPlayers returns the number of players n.
func (p *Program) NumPlayers() int {
	n, _ := p.valuations.Dims()
	return n
}

// NumResources returns the number of resources m.
func (p *Program) NumResources() int {
	_, m := p.valuations.Dims()
	return m
}

// Valuations returns the n×m valuation matrix. Must not be modified.
func (p *Program) Valuations() *mat.Dense {
	return p.valuations
}

// Supply returns the length-m resource supply vector. Must not be modified.
func (p *Program) Supply() *mat.VecDense {
	return p.supply
}

// Budgets returns the length-n budget vector, normalized to sum to one.
// Must not be modified.
func (p *Program) Budgets() *mat.VecDense {
	return p.budgets
}

// Utilities returns each player's utility under allocation x,
// u_i = sum_j V_ij * x_ij.
func (p *Program) Utilities(x *mat.Dense) *mat.VecDense {
	n, m := p.valuations.Dims()
	rv := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		u := 0.0
		for j := 0; j < m; j++ {
			u += p.valuations.At(i, j) * x.At(i, j)
		}
		rv.SetVec(i, u)
	}
	return rv
}

// Objective evaluates the budget-weighted log-utility objective at x.
// Returns -Inf if any player has non-positive utility.
func (p *Program) Objective(x *mat.Dense) float64 {
	utilities := p.Utilities(x)
	rv := 0.0
	for i := 0; i < utilities.Len(); i++ {
		u := utilities.AtVec(i)
		if u <= 0 {
			return math.Inf(-1)
		}
		rv += p.budgets.AtVec(i) * math.Log(u)
	}
	return rv
}

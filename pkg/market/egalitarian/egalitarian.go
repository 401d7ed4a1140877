// Package egalitarian implements egalitarian (max-min) division: every
// resource is divided fully among the players so that the smallest player
// utility is as large as possible.
//
//	maximize   t
//	subject to sum_j V_ij * x_ij >= t  for every player i
//	           sum_i x_ij = 1          for every resource j
//	           0 <= x_ij <= 1
//
// where V is the valuation matrix and x the allocation. Unlike the Fisher
// equilibrium of pkg/market there are no budgets and no prices; the program is
// linear and is solved exactly with gonum's simplex method.
package egalitarian

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/fisherproject/fisher/internal/common/marketerrors"
	"github.com/fisherproject/fisher/pkg/market/solver"
)

// Division is a validated egalitarian division.
type Division struct {
	// Allocation[i][j] is the fraction of resource j assigned to player i.
	// Entries lie in [0, 1] and every resource column sums to one.
	Allocation [][]float64
	// Utilities[i] is the realized utility of player i under Allocation.
	Utilities []float64
	// MinUtility is the maximized smallest utility. Every entry of Utilities
	// is at least MinUtility up to solver tolerance.
	MinUtility float64
}

// Divide computes an egalitarian division for the given valuation matrix.
// Valuations must be rectangular, non-negative and finite, with at least one
// player and one resource. The call is synchronous and holds no state; failures
// of the underlying linear program surface as *solver.ErrFailure.
func Divide(valuations [][]float64) (*Division, error) {
	n := len(valuations)
	if n == 0 || len(valuations[0]) == 0 {
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:    "valuations",
			Value:   valuations,
			Message: "at least one player and one resource required",
		})
	}
	m := len(valuations[0])
	for i, row := range valuations {
		if len(row) != m {
			return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
				Name:    "valuations",
				Value:   len(row),
				Message: fmt.Sprintf("row %d is not rectangular; expected length %d", i, m),
			})
		}
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
					Name:    "valuations",
					Value:   v,
					Message: fmt.Sprintf("valuation of player %d for resource %d must be non-negative and finite", i, j),
				})
			}
		}
	}

	// Standard-form LP over the non-negative variables
	// z = (x_11 .. x_nm, t, s_1 .. s_n):
	//
	//	minimize   -t
	//	subject to sum_i x_ij = 1                     for every resource j
	//	           sum_j V_ij x_ij - t - s_i = 0      for every player i
	//
	// The slack s_i turns the utility bound into an equality, x <= 1 is implied
	// by the column sums, and t >= 0 cuts nothing off since valuations are
	// non-negative.
	numVars := n*m + 1 + n
	tIndex := n * m

	c := make([]float64, numVars)
	c[tIndex] = -1

	a := mat.NewDense(m+n, numVars, nil)
	b := make([]float64, m+n)
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			a.Set(j, i*m+j, 1)
		}
		b[j] = 1
	}
	for i := 0; i < n; i++ {
		row := m + i
		for j := 0; j < m; j++ {
			a.Set(row, i*m+j, valuations[i][j])
		}
		a.Set(row, tIndex, -1)
		a.Set(row, tIndex+1+i, -1)
	}

	_, z, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return nil, errors.WithStack(&solver.ErrFailure{
			Engine:  "simplex",
			Reason:  failureReason(err),
			Message: err.Error(),
		})
	}

	allocation := make([][]float64, n)
	utilities := make([]float64, n)
	for i := 0; i < n; i++ {
		allocation[i] = make([]float64, m)
		u := 0.0
		for j := 0; j < m; j++ {
			v := z[i*m+j]
			// Round-off in the final basis solve can leave entries a hair
			// outside [0, 1].
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			allocation[i][j] = v
			u += valuations[i][j] * v
		}
		utilities[i] = u
	}
	return &Division{
		Allocation: allocation,
		Utilities:  utilities,
		MinUtility: z[tIndex],
	}, nil
}

func failureReason(err error) solver.FailureReason {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return solver.ReasonInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return solver.ReasonUnbounded
	default:
		return solver.ReasonNonConvergence
	}
}

package market

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/fisherproject/fisher/internal/common/logging"
	"github.com/fisherproject/fisher/pkg/market/eg"
	"github.com/fisherproject/fisher/pkg/market/solver"
)

// extractEquilibrium converts raw solver output into a validated allocation and
// price vector.
//
// The only numerical cleanup performed is clipping negative-but-near-zero
// entries to zero. The clipping threshold is relative: ClipTolerance times the
// resource's supply for allocation entries, and ClipTolerance times the largest
// price magnitude (at least 1) for prices. Entries more negative than that, or
// resource column sums exceeding supply beyond ClearingTolerance (relative to
// supply), fail with *ErrInfeasibleResult values aggregated in a multierror.
//
// Complementary slackness is checked softly: a resource priced above the
// clearing tolerance that is not fully allocated is logged as a warning, since
// it signals a sloppy but not infeasible solve.
func extractEquilibrium(p *eg.Program, sol *solver.Solution, params Parameters, log *logging.Logger) (allocation [][]float64, prices []float64, err error) {
	n := p.NumPlayers()
	m := p.NumResources()
	if rows, cols := sol.Allocation.Dims(); rows != n || cols != m {
		return nil, nil, errors.WithStack(&ErrInvalidShape{
			Field:    "allocation",
			Expected: n * m,
			Actual:   rows * cols,
			Message:  "solver returned an allocation of the wrong shape",
		})
	}
	if sol.Prices.Len() != m {
		return nil, nil, errors.WithStack(&ErrInvalidShape{
			Field:    "prices",
			Expected: m,
			Actual:   sol.Prices.Len(),
			Message:  "solver returned a price vector of the wrong length",
		})
	}

	var result *multierror.Error

	allocation = make([][]float64, n)
	for i := range allocation {
		allocation[i] = make([]float64, m)
	}
	for j := 0; j < m; j++ {
		supply := p.Supply().AtVec(j)
		threshold := params.ClipTolerance * supply
		for i := 0; i < n; i++ {
			v := sol.Allocation.At(i, j)
			if v < 0 {
				if -v > threshold {
					result = multierror.Append(result, &ErrInfeasibleResult{
						Resource:  j,
						Excess:    -v,
						Tolerance: threshold,
						Message:   fmt.Sprintf("allocation to player %d is negative", i),
					})
					continue
				}
				v = 0
			}
			allocation[i][j] = v
		}
	}

	priceScale := 1.0
	for j := 0; j < m; j++ {
		if v := math.Abs(sol.Prices.AtVec(j)); v > priceScale {
			priceScale = v
		}
	}
	prices = make([]float64, m)
	for j := 0; j < m; j++ {
		v := sol.Prices.AtVec(j)
		if v < 0 {
			if -v > params.ClipTolerance*priceScale {
				result = multierror.Append(result, &ErrInfeasibleResult{
					Resource:  j,
					Excess:    -v,
					Tolerance: params.ClipTolerance * priceScale,
					Message:   "price is negative",
				})
				continue
			}
			v = 0
		}
		prices[j] = v
	}

	for j := 0; j < m; j++ {
		supply := p.Supply().AtVec(j)
		columnSum := 0.0
		for i := 0; i < n; i++ {
			columnSum += allocation[i][j]
		}
		if columnSum-supply > params.ClearingTolerance*supply {
			result = multierror.Append(result, &ErrInfeasibleResult{
				Resource:  j,
				Excess:    columnSum - supply,
				Tolerance: params.ClearingTolerance * supply,
				Message:   "oversupplied beyond the clearing tolerance",
			})
			continue
		}
		slack := supply - columnSum
		if prices[j] > params.ClearingTolerance && slack > params.ClearingTolerance*supply {
			log.WithFields(map[string]any{
				"resource": j,
				"price":    prices[j],
				"slack":    slack,
			}).Warn("complementary slackness violated: positive price on a resource with slack capacity")
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, nil, errors.WithStack(err)
	}
	return allocation, prices, nil
}

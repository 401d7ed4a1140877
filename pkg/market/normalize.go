package market

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	fisherslices "github.com/fisherproject/fisher/internal/common/slices"
)

// Normalized returns a copy of m with absent supply and budget vectors replaced
// by their neutral defaults: one unit of every resource and equal budgets.
// All input violations are collected and returned together as a multierror of
// *ErrInvalidShape values; the market is returned unchanged in that case.
func (m Market) Normalized() (Market, error) {
	var result *multierror.Error

	numPlayers := m.NumPlayers()
	numResources := m.NumResources()
	if numPlayers == 0 || numResources == 0 {
		result = multierror.Append(result, &ErrInvalidShape{
			Field:   "valuations",
			Message: "at least one player and one resource required",
		})
		return m, errors.WithStack(result)
	}
	for i, row := range m.Valuations {
		if len(row) != numResources {
			result = multierror.Append(result, &ErrInvalidShape{
				Field:    "valuations",
				Expected: numResources,
				Actual:   len(row),
				Message:  fmt.Sprintf("row %d is not rectangular", i),
			})
			continue
		}
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				result = multierror.Append(result, &ErrInvalidShape{
					Field:   "valuations",
					Message: fmt.Sprintf("entry (%d,%d) must be non-negative and finite, got %g", i, j, v),
				})
			}
		}
	}

	supply := m.Supply
	if supply == nil {
		supply = fisherslices.Ones[float64](numResources)
	} else if len(supply) != numResources {
		result = multierror.Append(result, &ErrInvalidShape{
			Field:    "supply",
			Expected: numResources,
			Actual:   len(supply),
		})
	} else {
		for j, v := range supply {
			if !(v > 0) || math.IsInf(v, 1) {
				result = multierror.Append(result, &ErrInvalidShape{
					Field:   "supply",
					Message: fmt.Sprintf("entry %d must be positive and finite, got %g", j, v),
				})
			}
		}
	}

	budgets := m.Budgets
	if budgets == nil {
		budgets = fisherslices.Ones[float64](numPlayers)
	} else if len(budgets) != numPlayers {
		result = multierror.Append(result, &ErrInvalidShape{
			Field:    "budgets",
			Expected: numPlayers,
			Actual:   len(budgets),
		})
	} else {
		for i, v := range budgets {
			if !(v > 0) || math.IsInf(v, 1) {
				result = multierror.Append(result, &ErrInvalidShape{
					Field:   "budgets",
					Message: fmt.Sprintf("entry %d must be positive and finite, got %g", i, v),
				})
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return m, errors.WithStack(err)
	}
	return Market{
		Label:      m.Label,
		Valuations: m.Valuations,
		Supply:     supply,
		Budgets:    budgets,
	}, nil
}

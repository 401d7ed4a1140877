package fisherctl

import (
	"github.com/fisherproject/fisher/pkg/market"
)

// ExampleMarkets returns the bundled demonstration markets. They illustrate how
// the equilibrium reacts to preference spread and budget inequality.
func ExampleMarkets() []market.Market {
	return []market.Market{
		{
			Label: "Different Preferences",
			Valuations: [][]float64{
				{6, 2, 1},
				{1, 5, 5},
			},
			Supply:  []float64{1, 1, 1},
			Budgets: []float64{50, 50},
		},
		{
			Label: "Equal Preferences, Unequal Budgets",
			Valuations: [][]float64{
				{3, 4, 3},
				{3, 4, 3},
			},
			Supply:  []float64{1, 1, 1},
			Budgets: []float64{20, 80},
		},
		{
			Label: "Extreme Preferences",
			Valuations: [][]float64{
				{0, 0, 10},
				{10, 0, 0},
				{0, 10, 0},
			},
			Supply:  []float64{1, 1, 1},
			Budgets: []float64{33, 33, 34},
		},
		{
			Label: "Single Resource Preference",
			Valuations: [][]float64{
				{10, 0, 0},
				{0, 10, 0},
				{0, 0, 10},
			},
			Supply:  []float64{1, 1, 1},
			Budgets: []float64{1, 1, 1},
		},
		{
			Label: "One Rich Player",
			Valuations: [][]float64{
				{1, 1, 1},
				{1, 1, 1},
				{1, 1, 1},
			},
			Supply:  []float64{1, 1, 1},
			Budgets: []float64{1, 1, 98},
		},
	}
}

package market

// Market describes a linear-utility Fisher market: players with budgets buying
// divisible resources at market-clearing prices.
type Market struct {
	// Label names the market in logs and reports. Optional.
	Label string `mapstructure:"label"`
	// Valuations[i][j] is the marginal utility player i derives per unit of
	// resource j. Non-negative, at least one player and one resource.
	Valuations [][]float64 `mapstructure:"valuations"`
	// Supply is the total available quantity per resource. Optional; defaults
	// to one unit of every resource.
	Supply []float64 `mapstructure:"supply"`
	// Budgets is the relative purchasing power per player; only ratios matter.
	// Optional; defaults to equal budgets.
	Budgets []float64 `mapstructure:"budgets"`
}

// NumPlayers returns the number of players.
func (m Market) NumPlayers() int {
	return len(m.Valuations)
}

// NumResources returns the number of resources.
func (m Market) NumResources() int {
	if len(m.Valuations) == 0 {
		return 0
	}
	return len(m.Valuations[0])
}

// Equilibrium is a validated competitive equilibrium: an allocation and price
// vector such that markets clear and every player spends its whole budget
// optimally. Owned by the caller; the library keeps no reference to it.
type Equilibrium struct {
	// Allocation[i][j] is the quantity of resource j assigned to player i.
	// Non-negative; for every resource the column sum is at most its supply
	// within the clearing tolerance.
	Allocation [][]float64
	// Prices is the per-unit equilibrium price of each resource: the dual value
	// of its supply constraint. Budgets are normalized internally, so prices
	// satisfy sum_j Prices[j]*Supply[j] = 1 and are invariant under uniform
	// budget rescaling.
	Prices []float64
	// Utilities[i] is the realized utility of player i under Allocation.
	Utilities []float64
}

// Package fisherctl implements the fisherctl command-line application: loading
// market definitions, invoking the equilibrium solver and rendering results.
// All human-readable formatting lives here; the core library never formats
// output itself.
package fisherctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fisherproject/fisher/pkg/market"
	"github.com/fisherproject/fisher/pkg/market/egalitarian"
)

// App bundles the solver and output stream used by fisherctl commands.
type App struct {
	// Out is the stream results are rendered to.
	Out io.Writer
	// Solver computes equilibria. Configured once at startup.
	Solver *market.Solver
	// Timeout bounds each individual solve. Zero means no timeout.
	Timeout time.Duration
}

// New returns an App writing to stdout with a default solver.
func New() (*App, error) {
	s, err := market.NewSolver(nil, market.DefaultParameters())
	if err != nil {
		return nil, err
	}
	return &App{Out: os.Stdout, Solver: s}, nil
}

// Run solves a single market and renders the result.
func (a *App) Run(ctx context.Context, m market.Market) error {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	equilibrium, err := a.Solver.Solve(ctx, m)
	if err != nil {
		return err
	}
	a.report(m, equilibrium)
	return nil
}

// Examples solves the bundled example markets in order.
func (a *App) Examples(ctx context.Context) error {
	for _, m := range ExampleMarkets() {
		if err := a.Run(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// SolveFile loads a market definition from path and solves it.
func (a *App) SolveFile(ctx context.Context, path string) error {
	m, err := LoadMarket(path)
	if err != nil {
		return err
	}
	return a.Run(ctx, m)
}

// Divide computes the egalitarian division of m's valuations and renders it.
// Supply and budgets play no role in egalitarian division and are ignored.
func (a *App) Divide(m market.Market) error {
	division, err := egalitarian.Divide(m.Valuations)
	if err != nil {
		return err
	}
	a.reportDivision(m, division)
	return nil
}

// DivideFile loads a market definition from path and divides it.
func (a *App) DivideFile(path string) error {
	m, err := LoadMarket(path)
	if err != nil {
		return err
	}
	return a.Divide(m)
}

// report renders an equilibrium as an allocation table followed by per-resource
// prices and per-player utilities.
func (a *App) report(m market.Market, equilibrium *market.Equilibrium) {
	fmt.Fprintf(a.Out, "\n--- %s ---\n\n", labelOrDefault(m))
	a.writeAllocation(equilibrium.Allocation)

	fmt.Fprintf(a.Out, "\nResource Prices:\n")
	for j, p := range equilibrium.Prices {
		fmt.Fprintf(a.Out, "Resource %d: Price = %.4f\n", j+1, p)
	}
	a.writeUtilities(equilibrium.Utilities)
	fmt.Fprintln(a.Out)
}

// reportDivision renders an egalitarian division as an allocation table
// followed by per-player utilities and the maximized minimum.
func (a *App) reportDivision(m market.Market, division *egalitarian.Division) {
	fmt.Fprintf(a.Out, "\n--- %s (egalitarian) ---\n\n", labelOrDefault(m))
	a.writeAllocation(division.Allocation)
	a.writeUtilities(division.Utilities)
	fmt.Fprintf(a.Out, "\nMinimum Utility = %.4f\n\n", division.MinUtility)
}

func labelOrDefault(m market.Market) string {
	if m.Label == "" {
		return "Market"
	}
	return m.Label
}

func (a *App) writeAllocation(allocation [][]float64) {
	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "Allocation\t")
	for j := range allocation[0] {
		fmt.Fprintf(w, "Resource %d\t", j+1)
	}
	fmt.Fprintln(w)
	for i, row := range allocation {
		fmt.Fprintf(w, "Player %d\t", i+1)
		for _, v := range row {
			fmt.Fprintf(w, "%.2f\t", v)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func (a *App) writeUtilities(utilities []float64) {
	fmt.Fprintf(a.Out, "\nUtility per Player:\n")
	for i, u := range utilities {
		fmt.Fprintf(a.Out, "Player %d: Utility = %.4f\n", i+1, u)
	}
}

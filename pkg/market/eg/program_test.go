package eg

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/fisherproject/fisher/internal/common/marketerrors"
	fisherslices "github.com/fisherproject/fisher/internal/common/slices"
)

func TestNewProgram(t *testing.T) {
	tests := map[string]struct {
		valuations *mat.Dense
		supply     *mat.VecDense
		budgets    *mat.VecDense
		wantErr    bool
		degenerate bool
	}{
		"valid": {
			valuations: mat.NewDense(2, 3, []float64{6, 2, 1, 1, 5, 5}),
			supply:     mat.NewVecDense(3, fisherslices.Ones[float64](3)),
			budgets:    mat.NewVecDense(2, fisherslices.Ones[float64](2)),
		},
		"supply length mismatch": {
			valuations: mat.NewDense(2, 3, []float64{6, 2, 1, 1, 5, 5}),
			supply:     mat.NewVecDense(2, fisherslices.Ones[float64](2)),
			budgets:    mat.NewVecDense(2, fisherslices.Ones[float64](2)),
			wantErr:    true,
		},
		"budgets length mismatch": {
			valuations: mat.NewDense(2, 3, []float64{6, 2, 1, 1, 5, 5}),
			supply:     mat.NewVecDense(3, fisherslices.Ones[float64](3)),
			budgets:    mat.NewVecDense(3, fisherslices.Ones[float64](3)),
			wantErr:    true,
		},
		"non-positive supply": {
			valuations: mat.NewDense(2, 3, []float64{6, 2, 1, 1, 5, 5}),
			supply:     mat.NewVecDense(3, []float64{1, 0, 1}),
			budgets:    mat.NewVecDense(2, fisherslices.Ones[float64](2)),
			wantErr:    true,
		},
		"non-positive budget": {
			valuations: mat.NewDense(2, 3, []float64{6, 2, 1, 1, 5, 5}),
			supply:     mat.NewVecDense(3, fisherslices.Ones[float64](3)),
			budgets:    mat.NewVecDense(2, []float64{1, -1}),
			wantErr:    true,
		},
		"negative valuation": {
			valuations: mat.NewDense(2, 3, []float64{6, -2, 1, 1, 5, 5}),
			supply:     mat.NewVecDense(3, fisherslices.Ones[float64](3)),
			budgets:    mat.NewVecDense(2, fisherslices.Ones[float64](2)),
			wantErr:    true,
		},
		"NaN valuation": {
			valuations: mat.NewDense(2, 3, []float64{6, math.NaN(), 1, 1, 5, 5}),
			supply:     mat.NewVecDense(3, fisherslices.Ones[float64](3)),
			budgets:    mat.NewVecDense(2, fisherslices.Ones[float64](2)),
			wantErr:    true,
		},
		"degenerate player": {
			valuations: mat.NewDense(2, 3, []float64{6, 2, 1, 0, 0, 0}),
			supply:     mat.NewVecDense(3, fisherslices.Ones[float64](3)),
			budgets:    mat.NewVecDense(2, fisherslices.Ones[float64](2)),
			wantErr:    true,
			degenerate: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := NewProgram(tc.valuations, tc.supply, tc.budgets)
			if tc.wantErr {
				require.Error(t, err)
				var degenerateErr *ErrDegenerateMarket
				if tc.degenerate {
					assert.True(t, errors.As(err, &degenerateErr))
					assert.Equal(t, 1, degenerateErr.Player)
				} else {
					var invalidErr *marketerrors.ErrInvalidArgument
					assert.True(t, errors.As(err, &invalidErr))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, p.NumPlayers())
			assert.Equal(t, 3, p.NumResources())
		})
	}
}

func TestNewProgramNormalizesBudgets(t *testing.T) {
	valuations := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	supply := mat.NewVecDense(2, fisherslices.Ones[float64](2))
	budgets := mat.NewVecDense(2, []float64{50, 50})

	p, err := NewProgram(valuations, supply, budgets)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p.Budgets().AtVec(0), 1e-12)
	assert.InDelta(t, 0.5, p.Budgets().AtVec(1), 1e-12)
	// The caller-provided vector is untouched.
	assert.Equal(t, 50.0, budgets.AtVec(0))
}

func TestNewProgramCopiesInputs(t *testing.T) {
	valuations := mat.NewDense(1, 2, []float64{1, 2})
	supply := mat.NewVecDense(2, fisherslices.Ones[float64](2))
	budgets := mat.NewVecDense(1, fisherslices.Ones[float64](1))

	p, err := NewProgram(valuations, supply, budgets)
	require.NoError(t, err)

	valuations.Set(0, 0, 99)
	supply.SetVec(0, 99)
	assert.Equal(t, 1.0, p.Valuations().At(0, 0))
	assert.Equal(t, 1.0, p.Supply().AtVec(0))
}

func TestUtilitiesAndObjective(t *testing.T) {
	valuations := mat.NewDense(2, 2, []float64{2, 0, 0, 4})
	supply := mat.NewVecDense(2, fisherslices.Ones[float64](2))
	budgets := mat.NewVecDense(2, fisherslices.Ones[float64](2))

	p, err := NewProgram(valuations, supply, budgets)
	require.NoError(t, err)

	x := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	utilities := p.Utilities(x)
	assert.InDelta(t, 2.0, utilities.AtVec(0), 1e-12)
	assert.InDelta(t, 4.0, utilities.AtVec(1), 1e-12)

	// Budgets normalize to [1/2, 1/2].
	expected := 0.5*math.Log(2) + 0.5*math.Log(4)
	assert.InDelta(t, expected, p.Objective(x), 1e-12)

	// Zero utility for some player drives the objective to -Inf.
	zero := mat.NewDense(2, 2, nil)
	assert.True(t, math.IsInf(p.Objective(zero), -1))
}

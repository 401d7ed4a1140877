package market

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedDefaults(t *testing.T) {
	m := Market{
		Valuations: [][]float64{
			{6, 2, 1},
			{1, 5, 5},
		},
	}
	normalized, err := m.Normalized()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, normalized.Supply)
	assert.Equal(t, []float64{1, 1}, normalized.Budgets)
	assert.Equal(t, m.Valuations, normalized.Valuations)
}

func TestNormalizedKeepsProvidedVectors(t *testing.T) {
	m := Market{
		Valuations: [][]float64{{1, 2}},
		Supply:     []float64{3, 4},
		Budgets:    []float64{5},
	}
	normalized, err := m.Normalized()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, normalized.Supply)
	assert.Equal(t, []float64{5}, normalized.Budgets)
}

func TestNormalizedErrors(t *testing.T) {
	tests := map[string]struct {
		market Market
	}{
		"empty market": {
			market: Market{},
		},
		"ragged valuations": {
			market: Market{Valuations: [][]float64{{1, 2}, {3}}},
		},
		"negative valuation": {
			market: Market{Valuations: [][]float64{{1, -2}}},
		},
		"supply length mismatch": {
			market: Market{
				Valuations: [][]float64{{1, 2}},
				Supply:     []float64{1},
			},
		},
		"non-positive supply": {
			market: Market{
				Valuations: [][]float64{{1, 2}},
				Supply:     []float64{1, 0},
			},
		},
		"budgets length mismatch": {
			market: Market{
				Valuations: [][]float64{{1, 2}},
				Budgets:    []float64{1, 1},
			},
		},
		"non-positive budget": {
			market: Market{
				Valuations: [][]float64{{1, 2}},
				Budgets:    []float64{-1},
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tc.market.Normalized()
			require.Error(t, err)
			var shapeErr *ErrInvalidShape
			assert.True(t, errors.As(err, &shapeErr))
		})
	}
}

func TestNormalizedCollectsAllViolations(t *testing.T) {
	m := Market{
		Valuations: [][]float64{{1, 2}},
		Supply:     []float64{0, -1},
		Budgets:    []float64{0},
	}
	_, err := m.Normalized()
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
}

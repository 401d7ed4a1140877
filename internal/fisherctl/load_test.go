package fisherctl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisherproject/fisher/pkg/market"
)

func TestLoadMarket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.yaml")
	definition := `
label: Two Players
valuations:
  - [6, 2, 1]
  - [1, 5, 5]
supply: [1, 1, 1]
budgets: [50, 50]
`
	require.NoError(t, os.WriteFile(path, []byte(definition), 0o644))

	m, err := LoadMarket(path)
	require.NoError(t, err)
	assert.Equal(
		t,
		market.Market{
			Label: "Two Players",
			Valuations: [][]float64{
				{6, 2, 1},
				{1, 5, 5},
			},
			Supply:  []float64{1, 1, 1},
			Budgets: []float64{50, 50},
		},
		m,
	)
}

func TestLoadMarketOptionalVectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.yaml")
	definition := `
valuations:
  - [1, 2]
`
	require.NoError(t, os.WriteFile(path, []byte(definition), 0o644))

	m, err := LoadMarket(path)
	require.NoError(t, err)
	assert.Empty(t, m.Supply)
	assert.Empty(t, m.Budgets)
	assert.Equal(t, [][]float64{{1, 2}}, m.Valuations)
}

func TestLoadMarketMissingFile(t *testing.T) {
	_, err := LoadMarket(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

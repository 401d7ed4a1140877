package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	fisherslices "github.com/fisherproject/fisher/internal/common/slices"
)

func TestExtendVecDense(t *testing.T) {
	tests := map[string]struct {
		vec      *mat.VecDense
		n        int
		expected *mat.VecDense
	}{
		"nil vec": {
			vec:      nil,
			n:        3,
			expected: mat.NewVecDense(3, fisherslices.Zeros[float64](3)),
		},
		"extend": {
			vec:      mat.NewVecDense(1, fisherslices.Zeros[float64](1)),
			n:        3,
			expected: mat.NewVecDense(3, fisherslices.Zeros[float64](3)),
		},
		"extend unnecessary due to greater length": {
			vec:      mat.NewVecDense(3, fisherslices.Zeros[float64](3)),
			n:        1,
			expected: mat.NewVecDense(3, fisherslices.Zeros[float64](3)),
		},
		"extend unnecessary due to equal length": {
			vec:      mat.NewVecDense(3, fisherslices.Zeros[float64](3)),
			n:        3,
			expected: mat.NewVecDense(3, fisherslices.Zeros[float64](3)),
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			actual := ExtendVecDense(tc.vec, tc.n)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestProjectCappedSimplex(t *testing.T) {
	tests := map[string]struct {
		x        []float64
		cap      float64
		expected []float64
	}{
		"already feasible": {
			x:        []float64{0.2, 0.3},
			cap:      1.0,
			expected: []float64{0.2, 0.3},
		},
		"clip negatives only": {
			x:        []float64{-0.1, 0.4},
			cap:      1.0,
			expected: []float64{0, 0.4},
		},
		"uniform over cap": {
			x:        []float64{1, 1},
			cap:      1.0,
			expected: []float64{0.5, 0.5},
		},
		"threshold drops smallest": {
			x:        []float64{2, 0},
			cap:      1.0,
			expected: []float64{1, 0},
		},
		"zero cap": {
			x:        []float64{1, 2},
			cap:      0,
			expected: []float64{0, 0},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			x := append([]float64{}, tc.x...)
			ProjectCappedSimplex(x, tc.cap)
			assert.InDeltaSlice(t, tc.expected, x, 1e-12)

			sum := 0.0
			for _, v := range x {
				assert.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.LessOrEqual(t, sum, tc.cap+1e-12)
		})
	}
}

func TestColumnSums(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	expected := mat.NewVecDense(3, []float64{5, 7, 9})
	assert.Equal(t, expected, ColumnSums(m))
}

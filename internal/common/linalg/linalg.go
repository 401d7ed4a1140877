package linalg

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ExtendVecDense extends the length of vec in-place to be at least n.
func ExtendVecDense(vec *mat.VecDense, n int) *mat.VecDense {
	if vec == nil {
		return mat.NewVecDense(n, make([]float64, n))
	}
	rawVec := vec.RawVector()
	d := n - rawVec.N
	if d <= 0 {
		return vec
	}
	rawVec.Data = append(rawVec.Data, make([]float64, d)...)
	rawVec.N = n
	vec.SetRawVector(rawVec)
	return vec
}

// ProjectCappedSimplex overwrites x with the Euclidean projection of x onto
// the set {z : z >= 0, sum(z) <= cap}. If the non-negative part of x already
// sums to at most cap, the projection is just the element-wise clip at zero.
// Otherwise x is projected onto the simplex {z >= 0, sum(z) = cap} using the
// sort-and-threshold method of Duchi et al. (2008). cap must be non-negative.
func ProjectCappedSimplex(x []float64, cap float64) {
	if cap <= 0 {
		for i := range x {
			x[i] = 0
		}
		return
	}
	sum := 0.0
	for _, v := range x {
		if v > 0 {
			sum += v
		}
	}
	if sum <= cap {
		for i, v := range x {
			if v < 0 {
				x[i] = 0
			}
		}
		return
	}

	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	// Largest k such that sorted[k-1] - (cumsum(k) - cap)/k > 0.
	tau := 0.0
	cumsum := 0.0
	for k, v := range sorted {
		cumsum += v
		t := (cumsum - cap) / float64(k+1)
		if v-t <= 0 {
			break
		}
		tau = t
	}
	for i, v := range x {
		x[i] = v - tau
		if x[i] < 0 {
			x[i] = 0
		}
	}
}

// ColumnSums returns the vector of column sums of m.
func ColumnSums(m mat.Matrix) *mat.VecDense {
	rows, cols := m.Dims()
	rv := mat.NewVecDense(cols, nil)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		rv.SetVec(j, sum)
	}
	return rv
}

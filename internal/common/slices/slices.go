package slices

// Fill returns a slice of length n with all entries set to v.
func Fill[T any](v T, n int) []T {
	rv := make([]T, n)
	for i := range rv {
		rv[i] = v
	}
	return rv
}

// Zeros returns a slice of length n with all entries set to the zero value of T.
func Zeros[T any](n int) []T {
	return make([]T, n)
}

// Ones returns a slice of length n with all entries set to 1.
func Ones[T int | float64](n int) []T {
	return Fill[T](1, n)
}

package market

// Utilities computes each player's realized utility from an allocation,
// utility[i] = sum_j valuations[i][j] * allocation[i][j]. Pure; the only
// failure mode is a defensive shape mismatch, unreachable when allocation was
// produced by this library from the same valuations.
func Utilities(valuations, allocation [][]float64) ([]float64, error) {
	if len(allocation) != len(valuations) {
		return nil, &ErrInvalidShape{
			Field:    "allocation",
			Expected: len(valuations),
			Actual:   len(allocation),
		}
	}
	utilities := make([]float64, len(valuations))
	for i, row := range valuations {
		if len(allocation[i]) != len(row) {
			return nil, &ErrInvalidShape{
				Field:    "allocation",
				Expected: len(row),
				Actual:   len(allocation[i]),
			}
		}
		u := 0.0
		for j, v := range row {
			u += v * allocation[i][j]
		}
		utilities[i] = u
	}
	return utilities, nil
}

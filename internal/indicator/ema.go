package indicator

// EMA returns the exponential moving average of values with
// alpha = 2/(window+1), seeded with EMA[0] = values[0]. Every entry is
// defined.
func EMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(window+1)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}

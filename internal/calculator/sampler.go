package calculator

// DefaultMaxChartPoints bounds rendered chart series.
const DefaultMaxChartPoints = 100

// Sample downsamples items to at most maxPoints entries at a fixed stride,
// always keeping the first and last item. Short inputs are returned as is.
func Sample[T any](items []T, maxPoints int) []T {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxChartPoints
	}
	if maxPoints < 2 {
		maxPoints = 2
	}
	n := len(items)
	if n <= maxPoints {
		return items
	}

	step := (n + maxPoints - 1) / maxPoints
	out := make([]T, 0, maxPoints)
	out = append(out, items[0])
	for i := step; i < n-step; i += step {
		out = append(out, items[i])
	}
	return append(out, items[n-1])
}

package scoring

// Clip winsorizes v at max: extreme high values are truncated rather than
// excluded, which bounds outlier influence without dropping the record.
func Clip(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

// LinearRescale maps a clipped value in [0, max] onto [0, scaleFactor].
func LinearRescale(clipped, max, scaleFactor float64) float64 {
	if max <= 0 {
		return 0
	}
	return clipped / max * scaleFactor
}

package classify

// Flag encodes a boolean as the 0/1 integer used by the indicator columns.
func Flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Within reports whether a measured distance is at or inside a threshold.
// Both bounds are inclusive: a feature exactly at the threshold counts.
func Within(distFt, thresholdFt float64) bool {
	return distFt <= thresholdFt
}

// Contained reports whether a distance denotes containment. Distance zero is
// reserved for points inside or on the boundary of a polygonal layer.
func Contained(distFt float64) bool {
	return distFt == 0
}

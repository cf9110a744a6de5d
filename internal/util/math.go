package util

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return Min(Max(v, lo), hi)
}

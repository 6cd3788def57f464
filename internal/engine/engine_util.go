package engine

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floor0(v int) int {
	return max(v, 0)
}

// PeriodMaxTimeouts is the timeout cap for a period: two per half in
// regulation (quarters 1-4), one per overtime period.
func PeriodMaxTimeouts(quarter int) int {
	if quarter >= 5 {
		return 1
	}
	return 2
}

// addTimeouts applies a timeout delta against the period cap. A count
// already above the cap (left over from an earlier period) is kept, so
// only further increments are blocked.
func addTimeouts(cur, delta, quarter int) int {
	limit := max(PeriodMaxTimeouts(quarter), cur)
	return clamp(cur+delta, 0, limit)
}

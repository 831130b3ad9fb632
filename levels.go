package hnswix

import "math"

// buildLevelTable precomputes the per-level insertion probability table
// used by drawLevel. mL = 1/ln(M); p(i) decays geometrically and the table
// stops once the tail becomes negligible.
func buildLevelTable(m int) []float64 {
	if m < 2 {
		m = 2
	}
	mL := 1 / math.Log(float64(m))
	var table []float64
	for i := 0; ; i++ {
		p := math.Exp(-float64(i)/mL) * (1 - math.Exp(-1/mL))
		if p < 1e-9 && i > 0 {
			break
		}
		table = append(table, p)
		if i > 64 {
			// Defensive cap; unreachable for M >= 2, where p(i) falls
			// below 1e-9 before i = 30.
			break
		}
	}
	return table
}

// drawLevel samples a level from the cumulative distribution in table,
// walking it until the remaining mass r lands inside an entry.
func drawLevel(r float64, table []float64) int {
	for i, p := range table {
		if r < p {
			return i
		}
		r -= p
	}
	return len(table) - 1
}

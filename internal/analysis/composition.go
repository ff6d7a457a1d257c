// Package analysis computes nucleotide composition and answers gene range
// queries on behalf of callers that start from a chromosome id.
package analysis

import "math"

// Composition holds per-base counts for a sequence.
type Composition struct {
	Length    int     // len(sequence), including characters that are not counted
	GCPercent float64 // 100 * (G+C) / (A+C+G+T), two decimals

	A, C, G, T, N int
}

// Analyze counts A, C, G, T and N case-insensitively. Any other character is
// ignored. GCPercent is 0 when the sequence has no A, C, G or T.
func Analyze(seq string) Composition {
	comp := Composition{Length: len(seq)}
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'a':
			comp.A++
		case 'C', 'c':
			comp.C++
		case 'G', 'g':
			comp.G++
		case 'T', 't':
			comp.T++
		case 'N', 'n':
			comp.N++
		}
	}

	if valid := comp.A + comp.C + comp.G + comp.T; valid > 0 {
		comp.GCPercent = round2(float64(comp.G+comp.C) / float64(valid) * 100)
	}
	return comp
}

// round2 rounds to two decimals, halves away from zero for positive input.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

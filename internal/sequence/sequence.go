// Package sequence serves chromosome and gene sequences: full and ranged
// reads, length-checked replacement and chromosome lifecycle.
//
// Sequences are opaque text. Bases are not checked against the nucleotide
// alphabet; only lengths are validated.
package sequence

import (
	"fmt"

	"github.com/inodb/genomebank/internal/genome"
)

// Subsequence returns seq[start:end]. It requires 0 <= start < end <= len(seq).
func Subsequence(seq string, start, end int64) (string, error) {
	if start < 0 || start >= end || end > int64(len(seq)) {
		return "", fmt.Errorf("%w: [%d, %d) on sequence of length %d",
			genome.ErrInvalidRange, start, end, len(seq))
	}
	return seq[start:end], nil
}

// DeriveGeneSequence returns the sequence stored on the gene. It is not
// sliced from the chromosome; the two are kept independently.
func DeriveGeneSequence(g *genome.Gene) (string, error) {
	if !g.HasSequence() {
		return "", fmt.Errorf("gene %d (%s): %w", g.ID, g.Symbol, genome.ErrSequenceUnavailable)
	}
	return g.Sequence, nil
}

// ReplaceGeneSequence sets the gene's sequence. The new sequence must span
// the gene interval exactly.
func ReplaceGeneSequence(g *genome.Gene, seq string) error {
	want := g.End - g.Start
	if int64(len(seq)) != want {
		return fmt.Errorf("%w: gene %s spans %d bases, got %d",
			genome.ErrLengthMismatch, g.Symbol, want, len(seq))
	}
	g.Sequence = seq
	return nil
}

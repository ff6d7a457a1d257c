package genome

import (
	"fmt"
	"time"
)

// Strand is the orientation of a gene relative to the reference sequence.
type Strand string

const (
	StrandForward Strand = "+"
	StrandReverse Strand = "-"
)

// ParseStrand parses "+" or "-".
func ParseStrand(s string) (Strand, error) {
	switch Strand(s) {
	case StrandForward, StrandReverse:
		return Strand(s), nil
	}
	return "", fmt.Errorf("%w: strand must be '+' or '-', got %q", ErrInvalidInput, s)
}

// Gene is an annotated interval on a chromosome.
type Gene struct {
	ID           int64
	ChromosomeID int64
	Symbol       string // e.g. KRAS
	Start        int64  // 0-based, inclusive
	End          int64  // exclusive
	Strand       Strand
	Sequence     string // independently stored; empty when absent
	CreatedAt    time.Time
}

// Interval returns the gene's coordinates.
func (g *Gene) Interval() Interval {
	return Interval{Start: g.Start, End: g.End}
}

// Overlaps reports whether the gene shares at least one base with iv.
func (g *Gene) Overlaps(iv Interval) bool {
	return g.Interval().Overlaps(iv)
}

// HasSequence returns true if the gene carries its own sequence.
func (g *Gene) HasSequence() bool {
	return g.Sequence != ""
}

// IsForwardStrand returns true if the gene is on the forward strand.
func (g *Gene) IsForwardStrand() bool {
	return g.Strand == StrandForward
}

// Clone returns a copy of the gene.
func (g *Gene) Clone() *Gene {
	cp := *g
	return &cp
}

// GeneUpdate holds optional gene fields for a partial update.
// Nil fields are left unchanged.
type GeneUpdate struct {
	ChromosomeID *int64
	Symbol       *string
	Start        *int64
	End          *int64
	Strand       *Strand
}

// Apply copies the supplied fields onto g.
func (u GeneUpdate) Apply(g *Gene) {
	if u.ChromosomeID != nil {
		g.ChromosomeID = *u.ChromosomeID
	}
	if u.Symbol != nil {
		g.Symbol = *u.Symbol
	}
	if u.Start != nil {
		g.Start = *u.Start
	}
	if u.End != nil {
		g.End = *u.End
	}
	if u.Strand != nil {
		g.Strand = *u.Strand
	}
}

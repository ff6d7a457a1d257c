// Package output formats query results as tab-delimited text or JSON lines.
package output

import (
	"fmt"
	"io"

	"github.com/inodb/genomebank/internal/analysis"
	"github.com/inodb/genomebank/internal/genome"
)

// Output formats.
const (
	FormatTab  = "tab"
	FormatJSON = "json"
)

// Writer renders result sets. Each call writes one complete result set.
type Writer interface {
	WriteGeneRanges(ranges []analysis.GeneRange) error
	WriteStats(stats []*analysis.SequenceStats) error
	WriteChromosomes(chromosomes []*genome.Chromosome) error
	WriteGenes(genes []*genome.Gene) error
	WriteFunctions(functions []*genome.Function) error
	WriteAssociations(associations []*genome.Association) error
	WriteSequence(seq string) error
	Flush() error
}

// New returns a writer for format.
func New(w io.Writer, format string) (Writer, error) {
	switch format {
	case FormatTab, "":
		return NewTabWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	}
	return nil, fmt.Errorf("%w: unknown output format %q (want %s or %s)",
		genome.ErrInvalidInput, format, FormatTab, FormatJSON)
}

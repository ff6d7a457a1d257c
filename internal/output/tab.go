package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/genomebank/internal/analysis"
	"github.com/inodb/genomebank/internal/genome"
)

var (
	geneRangeColumns = []string{
		"#geneId",
		"symbol",
		"chromosomeName",
		"startPosition",
		"endPosition",
		"strand",
	}
	statsColumns = []string{
		"#chromosomeId",
		"chromosomeName",
		"sequenceLength",
		"geneCount",
		"gcPercentage",
		"aCount",
		"cCount",
		"gCount",
		"tCount",
		"nCount",
	}
	chromosomeColumns  = []string{"#id", "name", "length", "sequence", "checksum"}
	geneColumns        = []string{"#id", "chromosomeId", "symbol", "startPosition", "endPosition", "strand", "sequence"}
	functionColumns    = []string{"#id", "code", "name", "category", "description"}
	associationColumns = []string{"#geneId", "functionId", "evidence"}
)

// TabWriter writes results in tab-delimited format, one header line per result set.
// Missing values are written as "-".
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

func (tw *TabWriter) writeRow(values []string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesOrDash(b bool) string {
	if b {
		return "YES"
	}
	return "-"
}

// WriteGeneRanges writes genes found by a range query.
func (tw *TabWriter) WriteGeneRanges(ranges []analysis.GeneRange) error {
	if err := tw.writeRow(geneRangeColumns); err != nil {
		return err
	}
	for _, r := range ranges {
		if err := tw.writeRow([]string{
			itoa(r.GeneID),
			r.Symbol,
			r.ChromosomeName,
			itoa(r.StartPosition),
			itoa(r.EndPosition),
			r.Strand,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats writes composition statistics with GC percentage to two decimals.
func (tw *TabWriter) WriteStats(stats []*analysis.SequenceStats) error {
	if err := tw.writeRow(statsColumns); err != nil {
		return err
	}
	for _, s := range stats {
		if err := tw.writeRow([]string{
			itoa(s.ChromosomeID),
			s.ChromosomeName,
			strconv.Itoa(s.SequenceLength),
			strconv.Itoa(s.GeneCount),
			strconv.FormatFloat(s.GCPercentage, 'f', 2, 64),
			strconv.Itoa(s.ACount),
			strconv.Itoa(s.CCount),
			strconv.Itoa(s.GCount),
			strconv.Itoa(s.TCount),
			strconv.Itoa(s.NCount),
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteChromosomes writes chromosome summaries. Sequences are not printed.
func (tw *TabWriter) WriteChromosomes(chromosomes []*genome.Chromosome) error {
	if err := tw.writeRow(chromosomeColumns); err != nil {
		return err
	}
	for _, c := range chromosomes {
		if err := tw.writeRow([]string{
			itoa(c.ID),
			c.Name,
			itoa(c.Length),
			yesOrDash(c.HasSequence()),
			orDash(c.Checksum),
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteGenes writes gene records. Sequences are not printed.
func (tw *TabWriter) WriteGenes(genes []*genome.Gene) error {
	if err := tw.writeRow(geneColumns); err != nil {
		return err
	}
	for _, g := range genes {
		if err := tw.writeRow([]string{
			itoa(g.ID),
			itoa(g.ChromosomeID),
			g.Symbol,
			itoa(g.Start),
			itoa(g.End),
			string(g.Strand),
			yesOrDash(g.HasSequence()),
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteFunctions writes gene function records.
func (tw *TabWriter) WriteFunctions(functions []*genome.Function) error {
	if err := tw.writeRow(functionColumns); err != nil {
		return err
	}
	for _, f := range functions {
		if err := tw.writeRow([]string{
			itoa(f.ID),
			f.Code,
			f.Name,
			string(f.Category),
			orDash(f.Description),
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteAssociations writes gene-function links.
func (tw *TabWriter) WriteAssociations(associations []*genome.Association) error {
	if err := tw.writeRow(associationColumns); err != nil {
		return err
	}
	for _, a := range associations {
		if err := tw.writeRow([]string{
			itoa(a.GeneID),
			itoa(a.FunctionID),
			orDash(a.Evidence),
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteSequence writes a bare sequence line.
func (tw *TabWriter) WriteSequence(seq string) error {
	_, err := tw.w.WriteString(seq + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

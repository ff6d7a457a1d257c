package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genomebank/internal/analysis"
	"github.com/inodb/genomebank/internal/genome"
)

var created = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleRanges() []analysis.GeneRange {
	return []analysis.GeneRange{
		{GeneID: 1, Symbol: "KRAS", StartPosition: 25205245, EndPosition: 25250929, Strand: "-", ChromosomeName: "chr12"},
		{GeneID: 7, Symbol: "CFTR", StartPosition: 95, EndPosition: 115, Strand: "+", ChromosomeName: "chr12"},
	}
}

func sampleStats() []*analysis.SequenceStats {
	return []*analysis.SequenceStats{
		{ChromosomeID: 1, ChromosomeName: "chr1", SequenceLength: 5, GeneCount: 2, GCPercentage: 50, ACount: 1, CCount: 1, GCount: 1, TCount: 1, NCount: 1},
		{ChromosomeID: 2, ChromosomeName: "chr2", SequenceLength: 3, GeneCount: 0, GCPercentage: 33.33, ACount: 2, GCount: 1},
	}
}

func sampleChromosomes() []*genome.Chromosome {
	withSeq := &genome.Chromosome{ID: 1, Name: "chr1", Length: 4, CreatedAt: created}
	withSeq.SetSequence("ACGT")
	return []*genome.Chromosome{
		withSeq,
		{ID: 2, Name: "chrM", Length: 16569, CreatedAt: created},
	}
}

func sampleGenes() []*genome.Gene {
	return []*genome.Gene{
		{ID: 1, ChromosomeID: 1, Symbol: "A", Start: 0, End: 4, Strand: genome.StrandForward, Sequence: "ACGT", CreatedAt: created},
		{ID: 2, ChromosomeID: 1, Symbol: "B", Start: 1, End: 3, Strand: genome.StrandReverse, CreatedAt: created},
	}
}

func sampleFunctions() []*genome.Function {
	return []*genome.Function{
		{ID: 1, Code: "GO:0008150", Name: "biological_process", Category: genome.CategoryBiologicalProcess, Description: "any process", CreatedAt: created},
		{ID: 2, Code: "GO:0005575", Name: "cellular_component", Category: genome.CategoryCellularComponent, CreatedAt: created},
	}
}

func sampleAssociations() []*genome.Association {
	return []*genome.Association{
		{GeneID: 1, FunctionID: 1, Evidence: "IEA", CreatedAt: created},
		{GeneID: 2, FunctionID: 1, CreatedAt: created},
	}
}

// writeAll renders every result set in order through w.
func writeAll(t *testing.T, w Writer) {
	t.Helper()
	require.NoError(t, w.WriteGeneRanges(sampleRanges()))
	require.NoError(t, w.WriteStats(sampleStats()))
	require.NoError(t, w.WriteChromosomes(sampleChromosomes()))
	require.NoError(t, w.WriteGenes(sampleGenes()))
	require.NoError(t, w.WriteFunctions(sampleFunctions()))
	require.NoError(t, w.WriteAssociations(sampleAssociations()))
	require.NoError(t, w.WriteSequence("ACGTN"))
	require.NoError(t, w.Flush())
}

func TestTabWriter_Golden(t *testing.T) {
	var buf bytes.Buffer
	writeAll(t, NewTabWriter(&buf))
	newGolden(t).Assert(t, "tab_all", buf.Bytes())
}

func TestTabWriter_EmptyWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteGeneRanges(nil))
	require.NoError(t, w.Flush())

	assert.Equal(t, "#geneId\tsymbol\tchromosomeName\tstartPosition\tendPosition\tstrand\n", buf.String())
}

func TestTabWriter_StatsTwoDecimals(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteStats([]*analysis.SequenceStats{{ChromosomeID: 1, ChromosomeName: "chr1", GCPercentage: 50}}))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "\t50.00\t")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	w, err := New(&buf, FormatTab)
	require.NoError(t, err)
	assert.IsType(t, &TabWriter{}, w)

	w, err = New(&buf, "")
	require.NoError(t, err)
	assert.IsType(t, &TabWriter{}, w)

	w, err = New(&buf, FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, w)

	_, err = New(&buf, "xml")
	assert.ErrorIs(t, err, genome.ErrInvalidInput)
}

package index

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genomebank/internal/genome"
)

func gene(id int64, symbol string, start, end int64) *genome.Gene {
	return &genome.Gene{ID: id, Symbol: symbol, Start: start, End: end, Strand: genome.StrandForward}
}

func symbolsOf(genes []*genome.Gene) []string {
	out := make([]string, len(genes))
	for i, g := range genes {
		out[i] = g.Symbol
	}
	return out
}

func TestBuildTree_Empty(t *testing.T) {
	tree := BuildTree(nil)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.FindOverlaps(0, 100))
}

func TestTree_SingleGene(t *testing.T) {
	tree := BuildTree([]*genome.Gene{gene(1, "A", 100, 200)})

	assert.Equal(t, []string{"A"}, symbolsOf(tree.FindOverlaps(150, 151)))
	assert.Len(t, tree.FindOverlaps(100, 101), 1, "start is inclusive")
	assert.Len(t, tree.FindOverlaps(199, 200), 1, "last base")
	assert.Empty(t, tree.FindOverlaps(200, 300), "end is exclusive")
	assert.Empty(t, tree.FindOverlaps(50, 100), "query end is exclusive")
	assert.Len(t, tree.FindOverlaps(0, 1000), 1, "query contains gene")
}

func TestTree_Overlapping(t *testing.T) {
	tree := BuildTree([]*genome.Gene{
		gene(1, "A", 100, 300),
		gene(2, "B", 150, 250),
		gene(3, "C", 200, 400),
	})

	assert.Equal(t, []string{"A", "B"}, symbolsOf(tree.FindOverlaps(175, 176)))
	assert.Equal(t, []string{"A", "B", "C"}, symbolsOf(tree.FindOverlaps(240, 260)))
	assert.Equal(t, []string{"C"}, symbolsOf(tree.FindOverlaps(350, 360)))
}

func TestTree_NonOverlapping(t *testing.T) {
	tree := BuildTree([]*genome.Gene{
		gene(1, "A", 100, 200),
		gene(2, "B", 300, 400),
		gene(3, "C", 500, 600),
	})

	assert.Equal(t, []string{"A"}, symbolsOf(tree.FindOverlaps(150, 160)))
	assert.Empty(t, tree.FindOverlaps(200, 300), "gap between A and B")
	assert.Equal(t, []string{"B"}, symbolsOf(tree.FindOverlaps(350, 360)))
	assert.Equal(t, []string{"A", "B", "C"}, symbolsOf(tree.FindOverlaps(0, 1000)))
}

func TestTree_MaxEndPruning(t *testing.T) {
	// A short interval followed by a long one: the long one must still be found.
	tree := BuildTree([]*genome.Gene{
		gene(1, "short", 100, 110),
		gene(2, "long", 105, 500),
	})
	assert.Equal(t, []string{"long"}, symbolsOf(tree.FindOverlaps(400, 401)))
}

func TestTree_LongGeneBeforeShortOne(t *testing.T) {
	// The scan must not stop at B, which ends before 500, while A still reaches past it.
	tree := BuildTree([]*genome.Gene{
		gene(1, "A", 0, 1000),
		gene(2, "B", 10, 20),
	})
	assert.Equal(t, []string{"A"}, symbolsOf(tree.FindOverlaps(500, 501)))
}

func TestTree_OrderedByStartThenID(t *testing.T) {
	tree := BuildTree([]*genome.Gene{
		gene(3, "C", 50, 60),
		gene(2, "B", 10, 90),
		gene(1, "A", 10, 20),
	})
	assert.Equal(t, []string{"A", "B", "C"}, symbolsOf(tree.FindOverlaps(0, 100)))
}

func TestBuildTree_DoesNotModifyInput(t *testing.T) {
	in := []*genome.Gene{gene(1, "B", 50, 60), gene(2, "A", 10, 20)}
	BuildTree(in)
	assert.Equal(t, []string{"B", "A"}, symbolsOf(in))
}

func TestTree_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var genes []*genome.Gene
	for i := int64(1); i <= 500; i++ {
		start := rng.Int63n(10000)
		genes = append(genes, gene(i, "G", start, start+1+rng.Int63n(800)))
	}
	tree := BuildTree(genes)
	require.Equal(t, len(genes), tree.Len())

	for q := 0; q < 200; q++ {
		start := rng.Int63n(11000)
		end := start + 1 + rng.Int63n(300)

		var want []int64
		for _, g := range BuildTree(genes).genes {
			if g.Overlaps(genome.Interval{Start: start, End: end}) {
				want = append(want, g.ID)
			}
		}
		var got []int64
		for _, g := range tree.FindOverlaps(start, end) {
			got = append(got, g.ID)
		}
		assert.Equal(t, want, got, "query [%d, %d)", start, end)
	}
}

func BenchmarkTree_FindOverlaps(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	genes := make([]*genome.Gene, 20000)
	for i := range genes {
		start := rng.Int63n(250_000_000)
		genes[i] = gene(int64(i+1), "G", start, start+1+rng.Int63n(100_000))
	}
	tree := BuildTree(genes)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start := rng.Int63n(250_000_000)
		tree.FindOverlaps(start, start+1000)
	}
}

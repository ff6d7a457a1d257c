package index_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/index"
	"github.com/inodb/genomebank/internal/store"
	"github.com/inodb/genomebank/internal/store/storetest"
)

func newIndex(t *testing.T) (*index.Index, *store.MemStore, *genome.Chromosome) {
	t.Helper()
	repo := store.NewMemStore()
	chr := storetest.MustChromosome(t, repo, "chr1", 1000, "")
	return index.New(repo), repo, chr
}

func newGene(chromosomeID int64, symbol string, start, end int64) *genome.Gene {
	return &genome.Gene{
		ChromosomeID: chromosomeID,
		Symbol:       symbol,
		Start:        start,
		End:          end,
		Strand:       genome.StrandForward,
	}
}

func symbols(genes []*genome.Gene) []string {
	out := make([]string, len(genes))
	for i, g := range genes {
		out[i] = g.Symbol
	}
	return out
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)

	g, err := ix.Create(ctx, newGene(chr.ID, "KRAS", 100, 200))
	require.NoError(t, err)
	assert.NotZero(t, g.ID)

	got, err := ix.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "KRAS", got.Symbol)
	assert.Equal(t, genome.Interval{Start: 100, End: 200}, got.Interval())
}

func TestCreate_DoesNotModifyInput(t *testing.T) {
	ix, _, chr := newIndex(t)
	in := newGene(chr.ID, "KRAS", 100, 200)

	_, err := ix.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, in.ID)
}

func TestCreate_Validation(t *testing.T) {
	ix, _, chr := newIndex(t)

	tests := []struct {
		name string
		gene *genome.Gene
		want error
	}{
		{"inverted interval", newGene(chr.ID, "G", 100, 50), genome.ErrInvalidRange},
		{"empty interval", newGene(chr.ID, "G", 100, 100), genome.ErrInvalidRange},
		{"negative start", newGene(chr.ID, "G", -1, 50), genome.ErrInvalidRange},
		{"end past chromosome", newGene(chr.ID, "G", 900, 1001), genome.ErrOutOfBounds},
		{"unknown chromosome", newGene(chr.ID+99, "G", 10, 20), genome.ErrNotFound},
		{"blank symbol", newGene(chr.ID, "  ", 10, 20), genome.ErrInvalidInput},
		{"bad strand", &genome.Gene{ChromosomeID: chr.ID, Symbol: "G", Start: 10, End: 20, Strand: "x"}, genome.ErrInvalidInput},
		{"sequence length mismatch", &genome.Gene{ChromosomeID: chr.ID, Symbol: "G", Start: 10, End: 20, Strand: "+", Sequence: "ACGT"}, genome.ErrLengthMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ix.Create(context.Background(), tt.gene)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_FieldErrorsBeforeChromosomeLookup(t *testing.T) {
	ix, _, _ := newIndex(t)
	_, err := ix.Create(context.Background(), newGene(999, "", 10, 20))
	assert.ErrorIs(t, err, genome.ErrInvalidInput)
}

func TestCreate_EndAtChromosomeLength(t *testing.T) {
	ix, _, chr := newIndex(t)
	_, err := ix.Create(context.Background(), newGene(chr.ID, "TAIL", 990, 1000))
	assert.NoError(t, err)
}

func TestCreate_OverlappingGenesAllowed(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)

	_, err := ix.Create(ctx, newGene(chr.ID, "A", 100, 300))
	require.NoError(t, err)
	_, err = ix.Create(ctx, newGene(chr.ID, "B", 100, 300))
	require.NoError(t, err)

	genes, err := ix.ListByChromosome(ctx, chr.ID)
	require.NoError(t, err)
	assert.Len(t, genes, 2)
}

func TestQueryOverlaps(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)
	for _, g := range []*genome.Gene{
		newGene(chr.ID, "C", 500, 600),
		newGene(chr.ID, "A", 100, 200),
		newGene(chr.ID, "B", 150, 450),
	} {
		_, err := ix.Create(ctx, g)
		require.NoError(t, err)
	}

	tests := []struct {
		start, end int64
		want       []string
	}{
		{0, 1000, []string{"A", "B", "C"}},
		{160, 170, []string{"A", "B"}},
		{200, 300, []string{"B"}},
		{450, 500, []string{}},
		{599, 600, []string{"C"}},
		{0, 100, []string{}},
	}
	for _, tt := range tests {
		got, err := ix.QueryOverlaps(ctx, chr.ID, tt.start, tt.end)
		require.NoError(t, err)
		assert.Equal(t, tt.want, symbols(got), "[%d, %d)", tt.start, tt.end)
	}
}

func TestQueryOverlaps_Idempotent(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)
	_, err := ix.Create(ctx, newGene(chr.ID, "A", 100, 200))
	require.NoError(t, err)

	first, err := ix.QueryOverlaps(ctx, chr.ID, 0, 1000)
	require.NoError(t, err)
	second, err := ix.QueryOverlaps(ctx, chr.ID, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQueryOverlaps_InvalidRange(t *testing.T) {
	ix, _, chr := newIndex(t)
	_, err := ix.QueryOverlaps(context.Background(), chr.ID, 200, 100)
	assert.ErrorIs(t, err, genome.ErrInvalidRange)
	_, err = ix.QueryOverlaps(context.Background(), chr.ID, 100, 100)
	assert.ErrorIs(t, err, genome.ErrInvalidRange)
}

func TestQueryOverlapsBatch_MatchesSingleQueries(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)
	for i := int64(0); i < 20; i++ {
		_, err := ix.Create(ctx, newGene(chr.ID, "G", i*40, i*40+70))
		require.NoError(t, err)
	}

	intervals := []genome.Interval{{Start: 0, End: 10}, {Start: 35, End: 45}, {Start: 500, End: 900}, {Start: 990, End: 1000}}
	batch, err := ix.QueryOverlapsBatch(ctx, chr.ID, intervals)
	require.NoError(t, err)
	require.Len(t, batch, len(intervals))

	for i, iv := range intervals {
		single, err := ix.QueryOverlaps(ctx, chr.ID, iv.Start, iv.End)
		require.NoError(t, err)
		assert.Equal(t, len(single), len(batch[i]), "interval %s", iv)
		for j := range single {
			assert.Equal(t, single[j].ID, batch[i][j].ID)
		}
	}

	_, err = ix.QueryOverlapsBatch(ctx, chr.ID, []genome.Interval{{Start: 5, End: 1}})
	assert.ErrorIs(t, err, genome.ErrInvalidRange)
}

func TestUpdate_Partial(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)
	g, err := ix.Create(ctx, newGene(chr.ID, "A", 100, 200))
	require.NoError(t, err)

	symbol := "A2"
	end := int64(250)
	updated, err := ix.Update(ctx, g.ID, genome.GeneUpdate{Symbol: &symbol, End: &end})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Symbol)
	assert.Equal(t, int64(100), updated.Start)
	assert.Equal(t, int64(250), updated.End)

	found, err := ix.QueryOverlaps(ctx, chr.ID, 220, 230)
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, symbols(found))
}

func TestUpdate_DoesNotRevalidateInterval(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemStore()
	chr := storetest.MustChromosome(t, repo, "chr1", 1000, "")
	ix := index.New(repo)
	core, logs := observer.New(zap.WarnLevel)
	ix.SetLogger(zap.New(core))

	g, err := ix.Create(ctx, newGene(chr.ID, "A", 100, 200))
	require.NoError(t, err)

	start := int64(300)
	updated, err := ix.Update(ctx, g.ID, genome.GeneUpdate{Start: &start})
	require.NoError(t, err, "inverted interval is accepted on update")
	assert.Equal(t, int64(300), updated.Start)
	assert.Equal(t, int64(200), updated.End)
	assert.Equal(t, 1, logs.FilterMessage("gene interval is empty or inverted after update").Len())

	end := int64(5000)
	_, err = ix.Update(ctx, g.ID, genome.GeneUpdate{End: &end})
	assert.NoError(t, err, "end beyond chromosome length is accepted on update")
}

func TestUpdate_Errors(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)
	g, err := ix.Create(ctx, newGene(chr.ID, "A", 100, 200))
	require.NoError(t, err)

	_, err = ix.Update(ctx, g.ID+100, genome.GeneUpdate{})
	assert.ErrorIs(t, err, genome.ErrNotFound)

	missing := chr.ID + 100
	_, err = ix.Update(ctx, g.ID, genome.GeneUpdate{ChromosomeID: &missing})
	assert.ErrorIs(t, err, genome.ErrNotFound)

	blank := ""
	_, err = ix.Update(ctx, g.ID, genome.GeneUpdate{Symbol: &blank})
	assert.ErrorIs(t, err, genome.ErrInvalidInput)

	bad := genome.Strand("?")
	_, err = ix.Update(ctx, g.ID, genome.GeneUpdate{Strand: &bad})
	assert.ErrorIs(t, err, genome.ErrInvalidInput)
}

func TestUpdate_MovesToOtherChromosome(t *testing.T) {
	ctx := context.Background()
	ix, repo, chr := newIndex(t)
	other := storetest.MustChromosome(t, repo, "chr2", 1000, "")
	g, err := ix.Create(ctx, newGene(chr.ID, "A", 100, 200))
	require.NoError(t, err)

	_, err = ix.Update(ctx, g.ID, genome.GeneUpdate{ChromosomeID: &other.ID})
	require.NoError(t, err)

	onFirst, err := ix.QueryOverlaps(ctx, chr.ID, 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, onFirst)
	onSecond, err := ix.QueryOverlaps(ctx, other.ID, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, symbols(onSecond))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)
	g, err := ix.Create(ctx, newGene(chr.ID, "A", 100, 200))
	require.NoError(t, err)

	deleted, err := ix.Delete(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = ix.Delete(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = ix.Get(ctx, g.ID)
	assert.ErrorIs(t, err, genome.ErrNotFound)

	found, err := ix.QueryOverlaps(ctx, chr.ID, 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	ix, _, chr := newIndex(t)
	for _, s := range []string{"BRCA1", "BRCA2", "TP53"} {
		_, err := ix.Create(ctx, newGene(chr.ID, s, 10, 20))
		require.NoError(t, err)
	}
	found, err := ix.Search(ctx, "brca")
	require.NoError(t, err)
	assert.Equal(t, []string{"BRCA1", "BRCA2"}, symbols(found))
}

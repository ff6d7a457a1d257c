package analysis_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genomebank/internal/analysis"
	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/index"
	"github.com/inodb/genomebank/internal/sequence"
	"github.com/inodb/genomebank/internal/store"
	"github.com/inodb/genomebank/internal/store/storetest"
)

type fixture struct {
	repo      *store.MemStore
	sequences *sequence.Store
	index     *index.Index
	analysis  *analysis.Service
}

func newFixture(workers int) *fixture {
	repo := store.NewMemStore()
	ix := index.New(repo)
	return &fixture{
		repo:      repo,
		sequences: sequence.NewStore(repo),
		index:     ix,
		analysis:  analysis.NewService(repo, ix, workers),
	}
}

func geneSymbols(ranges []analysis.GeneRange) []string {
	out := make([]string, len(ranges))
	for i, r := range ranges {
		out[i] = r.Symbol
	}
	return out
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(1)

	chr, err := f.sequences.Create(ctx, "chr7", 1000, strings.Repeat("A", 1000))
	require.NoError(t, err)

	seq := strings.Repeat("A", 100) + strings.Repeat("C", 10) + strings.Repeat("A", 890)
	_, err = f.sequences.Replace(ctx, chr.ID, seq)
	require.NoError(t, err)

	cs, err := f.sequences.Range(ctx, chr.ID, 100, 110)
	require.NoError(t, err)
	assert.Equal(t, "CCCCCCCCCC", cs)

	_, err = f.index.Create(ctx, &genome.Gene{
		ChromosomeID: chr.ID,
		Symbol:       "CFTR",
		Start:        95,
		End:          115,
		Strand:       genome.StrandForward,
	})
	require.NoError(t, err)

	hits, err := f.analysis.GenesInRange(ctx, chr.ID, 90, 120)
	require.NoError(t, err)
	require.Equal(t, []string{"CFTR"}, geneSymbols(hits))
	assert.Equal(t, analysis.GeneRange{
		GeneID:         hits[0].GeneID,
		Symbol:         "CFTR",
		StartPosition:  95,
		EndPosition:    115,
		Strand:         "+",
		ChromosomeName: "chr7",
	}, hits[0])

	miss, err := f.analysis.GenesInRange(ctx, chr.ID, 115, 200)
	require.NoError(t, err)
	assert.Empty(t, miss)

	stats, err := f.analysis.SequenceStats(ctx, chr.ID)
	require.NoError(t, err)
	assert.Equal(t, &analysis.SequenceStats{
		ChromosomeID:   chr.ID,
		ChromosomeName: "chr7",
		SequenceLength: 1000,
		GeneCount:      1,
		GCPercentage:   1,
		ACount:         990,
		CCount:         10,
	}, stats)
}

func TestGenesInRange_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(1)
	chr := storetest.MustChromosome(t, f.repo, "chr1", 100, "")

	_, err := f.analysis.GenesInRange(ctx, chr.ID+1, 50, 10)
	assert.ErrorIs(t, err, genome.ErrNotFound, "chromosome is checked before the range")

	_, err = f.analysis.GenesInRange(ctx, chr.ID, 50, 10)
	assert.ErrorIs(t, err, genome.ErrInvalidRange)
	_, err = f.analysis.GenesInRange(ctx, chr.ID, -1, 10)
	assert.ErrorIs(t, err, genome.ErrInvalidRange)
}

func TestGenesInRegions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(1)
	chr := storetest.MustChromosome(t, f.repo, "chr1", 1000, "")
	storetest.MustGene(t, f.repo, chr.ID, "A", 0, 100)
	storetest.MustGene(t, f.repo, chr.ID, "B", 50, 300)
	storetest.MustGene(t, f.repo, chr.ID, "C", 600, 700)

	got, err := f.analysis.GenesInRegions(ctx, chr.ID, []genome.Interval{
		{Start: 0, End: 10},
		{Start: 90, End: 110},
		{Start: 300, End: 600},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A"}, geneSymbols(got[0]))
	assert.Equal(t, []string{"A", "B"}, geneSymbols(got[1]))
	assert.Empty(t, got[2])

	_, err = f.analysis.GenesInRegions(ctx, chr.ID+1, nil)
	assert.ErrorIs(t, err, genome.ErrNotFound)
}

func TestSequenceStats_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(1)
	chr := storetest.MustChromosome(t, f.repo, "chr1", 100, "")

	_, err := f.analysis.SequenceStats(ctx, chr.ID+1)
	assert.ErrorIs(t, err, genome.ErrNotFound)
	assert.NotErrorIs(t, err, genome.ErrSequenceUnavailable)

	_, err = f.analysis.SequenceStats(ctx, chr.ID)
	assert.ErrorIs(t, err, genome.ErrSequenceUnavailable)
	assert.Equal(t, 404, genome.StatusCode(err))
}

func TestSequenceStats_GeneCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(1)
	chr := storetest.MustChromosome(t, f.repo, "chr1", 8, "ACGTACGT")
	other := storetest.MustChromosome(t, f.repo, "chr2", 8, "")
	storetest.MustGene(t, f.repo, chr.ID, "A", 0, 4)
	storetest.MustGene(t, f.repo, chr.ID, "B", 2, 8)
	storetest.MustGene(t, f.repo, other.ID, "C", 0, 4)

	stats, err := f.analysis.SequenceStats(ctx, chr.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.GeneCount)
	assert.Equal(t, 50.0, stats.GCPercentage)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(4)

	var want []string
	for i := 0; i < 20; i++ {
		name := "chr" + strings.Repeat("x", i%3) + string(rune('A'+i))
		if i%5 == 0 {
			storetest.MustChromosome(t, f.repo, name, 4, "")
			continue
		}
		storetest.MustChromosome(t, f.repo, name, 4, "GGAA")
		want = append(want, name)
	}

	report, err := f.analysis.Report(ctx)
	require.NoError(t, err)
	require.Len(t, report, len(want))

	var got []string
	for i, st := range report {
		got = append(got, st.ChromosomeName)
		assert.Equal(t, 50.0, st.GCPercentage)
		if i > 0 {
			assert.Less(t, report[i-1].ChromosomeID, st.ChromosomeID)
		}
	}
	assert.Equal(t, want, got)
}

func TestReport_Empty(t *testing.T) {
	f := newFixture(0)
	report, err := f.analysis.Report(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestReport_Canceled(t *testing.T) {
	f := newFixture(2)
	storetest.MustChromosome(t, f.repo, "chr1", 4, "ACGT")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.analysis.Report(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

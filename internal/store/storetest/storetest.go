// Package storetest holds a conformance suite that every store.Repository
// implementation must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/store"
)

// Opener returns a fresh, empty repository. Cleanup is the opener's job.
type Opener func(t *testing.T) store.Repository

// Run executes the suite against repositories produced by open.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo store.Repository)
	}{
		{"ChromosomeLifecycle", testChromosomeLifecycle},
		{"ChromosomeByName", testChromosomeByName},
		{"DeleteChromosomeCascades", testDeleteChromosomeCascades},
		{"GeneLifecycle", testGeneLifecycle},
		{"GenesOrderedByStart", testGenesOrderedByStart},
		{"FindGenesOverlapping", testFindGenesOverlapping},
		{"SaveGeneMovesInterval", testSaveGeneMovesInterval},
		{"CreateGenesBulk", testCreateGenesBulk},
		{"SearchGenesBySymbol", testSearchGenesBySymbol},
		{"Functions", testFunctions},
		{"FunctionSearch", testFunctionSearch},
		{"SaveFunction", testSaveFunction},
		{"DeleteFunctionCascades", testDeleteFunctionCascades},
		{"Associations", testAssociations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

// MustChromosome creates a chromosome and fails the test on error.
func MustChromosome(t *testing.T, repo store.Repository, name string, length int64, seq string) *genome.Chromosome {
	t.Helper()
	c := &genome.Chromosome{Name: name, Length: length}
	c.SetSequence(seq)
	require.NoError(t, repo.CreateChromosome(context.Background(), c))
	return c
}

// MustGene creates a gene and fails the test on error.
func MustGene(t *testing.T, repo store.Repository, chromosomeID int64, symbol string, start, end int64) *genome.Gene {
	t.Helper()
	g := &genome.Gene{
		ChromosomeID: chromosomeID,
		Symbol:       symbol,
		Start:        start,
		End:          end,
		Strand:       genome.StrandForward,
	}
	require.NoError(t, repo.CreateGene(context.Background(), g))
	return g
}

func symbols(genes []*genome.Gene) []string {
	out := make([]string, len(genes))
	for i, g := range genes {
		out[i] = g.Symbol
	}
	return out
}

func testChromosomeLifecycle(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	c := MustChromosome(t, repo, "chr1", 8, "ACGTACGT")
	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := repo.FindChromosome(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "chr1", got.Name)
	assert.Equal(t, int64(8), got.Length)
	assert.Equal(t, "ACGTACGT", got.Sequence)
	assert.Equal(t, genome.SequenceChecksum("ACGTACGT"), got.Checksum)

	noSeq := MustChromosome(t, repo, "chr2", 100, "")
	got, err = repo.FindChromosome(ctx, noSeq.ID)
	require.NoError(t, err)
	assert.False(t, got.HasSequence())
	assert.Empty(t, got.Checksum)

	got.Name = "chr2b"
	got.SetSequence("A")
	require.NoError(t, repo.SaveChromosome(ctx, got))
	got, err = repo.FindChromosome(ctx, noSeq.ID)
	require.NoError(t, err)
	assert.Equal(t, "chr2b", got.Name)
	assert.Equal(t, "A", got.Sequence)

	all, err := repo.ListChromosomes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, c.ID, all[0].ID)

	_, err = repo.FindChromosome(ctx, 9999)
	assert.ErrorIs(t, err, genome.ErrNotFound)

	err = repo.SaveChromosome(ctx, &genome.Chromosome{ID: 9999, Name: "x", Length: 1})
	assert.ErrorIs(t, err, genome.ErrNotFound)
}

func testChromosomeByName(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr12", 10, "")

	got, err := repo.FindChromosomeByName(ctx, "chr12")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = repo.FindChromosomeByName(ctx, "chrZ")
	assert.ErrorIs(t, err, genome.ErrNotFound)
}

func testDeleteChromosomeCascades(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 1000, "")
	other := MustChromosome(t, repo, "chr2", 1000, "")
	g := MustGene(t, repo, c.ID, "A1", 10, 20)
	kept := MustGene(t, repo, other.ID, "B1", 10, 20)

	f := &genome.Function{Code: "GO:0000001", Name: "test", Category: genome.CategoryBiologicalProcess}
	require.NoError(t, repo.CreateFunction(ctx, f))
	_, err := repo.Associate(ctx, g.ID, f.ID, "IDA")
	require.NoError(t, err)

	ok, err := repo.DeleteChromosome(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindChromosome(ctx, c.ID)
	assert.ErrorIs(t, err, genome.ErrNotFound)
	_, err = repo.FindGene(ctx, g.ID)
	assert.ErrorIs(t, err, genome.ErrNotFound)
	assocs, err := repo.ListAssociationsByFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, assocs)

	_, err = repo.FindGene(ctx, kept.ID)
	assert.NoError(t, err, "genes on other chromosomes survive")

	ok, err = repo.DeleteChromosome(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testGeneLifecycle(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr12", 1000, "")

	g := &genome.Gene{
		ChromosomeID: c.ID,
		Symbol:       "KRAS",
		Start:        100,
		End:          110,
		Strand:       genome.StrandReverse,
		Sequence:     "ACGTACGTAC",
	}
	require.NoError(t, repo.CreateGene(ctx, g))
	assert.NotZero(t, g.ID)

	got, err := repo.FindGene(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "KRAS", got.Symbol)
	assert.Equal(t, c.ID, got.ChromosomeID)
	assert.Equal(t, int64(100), got.Start)
	assert.Equal(t, int64(110), got.End)
	assert.Equal(t, genome.StrandReverse, got.Strand)
	assert.Equal(t, "ACGTACGTAC", got.Sequence)

	got.Symbol = "KRAS2"
	got.Sequence = ""
	require.NoError(t, repo.SaveGene(ctx, got))
	got, err = repo.FindGene(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "KRAS2", got.Symbol)
	assert.False(t, got.HasSequence())

	ok, err := repo.DeleteGene(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.DeleteGene(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindGene(ctx, g.ID)
	assert.ErrorIs(t, err, genome.ErrNotFound)
	err = repo.SaveGene(ctx, got)
	assert.ErrorIs(t, err, genome.ErrNotFound)
}

func testGenesOrderedByStart(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 1000, "")
	MustGene(t, repo, c.ID, "C", 300, 400)
	MustGene(t, repo, c.ID, "A", 100, 200)
	MustGene(t, repo, c.ID, "B", 100, 150)

	genes, err := repo.FindGenesByChromosome(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, symbols(genes), "ordered by start, then id")

	genes, err = repo.FindGenesByChromosome(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func testFindGenesOverlapping(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 1000, "")
	other := MustChromosome(t, repo, "chr2", 1000, "")
	MustGene(t, repo, c.ID, "left", 0, 100)
	MustGene(t, repo, c.ID, "span", 95, 115)
	MustGene(t, repo, c.ID, "right", 115, 200)
	MustGene(t, repo, c.ID, "long", 50, 900)
	MustGene(t, repo, other.ID, "elsewhere", 95, 115)

	genes, err := repo.FindGenesOverlapping(ctx, c.ID, 100, 115)
	require.NoError(t, err)
	assert.Equal(t, []string{"long", "span"}, symbols(genes), "touching genes excluded")

	genes, err = repo.FindGenesOverlapping(ctx, c.ID, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "long", "span", "right"}, symbols(genes))

	genes, err = repo.FindGenesOverlapping(ctx, c.ID, 900, 1000)
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func testSaveGeneMovesInterval(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 1000, "")
	other := MustChromosome(t, repo, "chr2", 1000, "")
	g := MustGene(t, repo, c.ID, "MOVER", 10, 20)

	g.Start, g.End = 500, 600
	require.NoError(t, repo.SaveGene(ctx, g))

	genes, err := repo.FindGenesOverlapping(ctx, c.ID, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, genes)
	genes, err = repo.FindGenesOverlapping(ctx, c.ID, 550, 551)
	require.NoError(t, err)
	assert.Equal(t, []string{"MOVER"}, symbols(genes))

	g.ChromosomeID = other.ID
	require.NoError(t, repo.SaveGene(ctx, g))
	genes, err = repo.FindGenesByChromosome(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, genes)
	genes, err = repo.FindGenesByChromosome(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"MOVER"}, symbols(genes))
}

func testCreateGenesBulk(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 1000, "")

	var batch []*genome.Gene
	for i := int64(0); i < 25; i++ {
		batch = append(batch, &genome.Gene{
			ChromosomeID: c.ID,
			Symbol:       "G",
			Start:        i * 10,
			End:          i*10 + 5,
			Strand:       genome.StrandForward,
		})
	}
	require.NoError(t, repo.CreateGenes(ctx, batch))
	for _, g := range batch {
		assert.NotZero(t, g.ID)
	}

	genes, err := repo.FindGenesByChromosome(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, genes, 25)

	require.NoError(t, repo.CreateGenes(ctx, nil))
}

func testSearchGenesBySymbol(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 1000, "")
	MustGene(t, repo, c.ID, "BRCA1", 200, 300)
	MustGene(t, repo, c.ID, "BRCA2", 100, 150)
	MustGene(t, repo, c.ID, "TP53", 10, 20)

	genes, err := repo.SearchGenesBySymbol(ctx, "brca")
	require.NoError(t, err)
	assert.Equal(t, []string{"BRCA2", "BRCA1"}, symbols(genes))

	genes, err = repo.SearchGenesBySymbol(ctx, "xyz")
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func testFunctions(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	f := &genome.Function{
		Code:        "GO:0003924",
		Name:        "GTPase activity",
		Category:    genome.CategoryMolecularFunction,
		Description: "Catalysis of GTP hydrolysis",
	}
	require.NoError(t, repo.CreateFunction(ctx, f))
	assert.NotZero(t, f.ID)

	got, err := repo.FindFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "GTPase activity", got.Name)
	assert.Equal(t, genome.CategoryMolecularFunction, got.Category)

	dup := &genome.Function{Code: "GO:0003924", Name: "dup", Category: genome.CategoryMolecularFunction}
	assert.ErrorIs(t, repo.CreateFunction(ctx, dup), genome.ErrConflict)

	all, err := repo.ListFunctions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.FindFunction(ctx, 9999)
	assert.ErrorIs(t, err, genome.ErrNotFound)
}

func mustFunction(t *testing.T, repo store.Repository, code string, category genome.Category) *genome.Function {
	t.Helper()
	f := &genome.Function{Code: code, Name: code + " term", Category: category}
	require.NoError(t, repo.CreateFunction(context.Background(), f))
	return f
}

func codes(functions []*genome.Function) []string {
	out := make([]string, len(functions))
	for i, f := range functions {
		out[i] = f.Code
	}
	return out
}

func testFunctionSearch(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustFunction(t, repo, "GO:0003924", genome.CategoryMolecularFunction)
	mustFunction(t, repo, "GO:0008150", genome.CategoryBiologicalProcess)
	mustFunction(t, repo, "go:0005575", genome.CategoryCellularComponent)
	mustFunction(t, repo, "GO:0003674", genome.CategoryMolecularFunction)

	found, err := repo.SearchFunctionsByCode(ctx, "go:000")
	require.NoError(t, err)
	assert.Equal(t, []string{"GO:0003924", "GO:0008150", "go:0005575", "GO:0003674"}, codes(found))

	found, err = repo.SearchFunctionsByCode(ctx, "3924")
	require.NoError(t, err)
	assert.Equal(t, []string{"GO:0003924"}, codes(found))

	found, err = repo.SearchFunctionsByCode(ctx, "nomatch")
	require.NoError(t, err)
	assert.Empty(t, found)

	mf, err := repo.ListFunctionsByCategory(ctx, genome.CategoryMolecularFunction)
	require.NoError(t, err)
	assert.Equal(t, []string{"GO:0003924", "GO:0003674"}, codes(mf))
}

func testSaveFunction(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	f := mustFunction(t, repo, "GO:0003924", genome.CategoryMolecularFunction)
	other := mustFunction(t, repo, "GO:0008150", genome.CategoryBiologicalProcess)

	f.Name = "GTPase activity"
	f.Description = "Catalysis of GTP hydrolysis"
	require.NoError(t, repo.SaveFunction(ctx, f), "saving with its own code is not a conflict")

	f.Code = "GO:0016887"
	require.NoError(t, repo.SaveFunction(ctx, f))
	got, err := repo.FindFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "GO:0016887", got.Code)
	assert.Equal(t, "GTPase activity", got.Name)
	assert.Equal(t, "Catalysis of GTP hydrolysis", got.Description)

	f.Code = other.Code
	assert.ErrorIs(t, repo.SaveFunction(ctx, f), genome.ErrConflict)
	got, err = repo.FindFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "GO:0016887", got.Code, "a rejected save changes nothing")

	missing := &genome.Function{ID: 9999, Code: "GO:9", Name: "x", Category: genome.CategoryBiologicalProcess}
	assert.ErrorIs(t, repo.SaveFunction(ctx, missing), genome.ErrNotFound)
}

func testDeleteFunctionCascades(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 100, "")
	g := MustGene(t, repo, c.ID, "KRAS", 0, 10)
	f := mustFunction(t, repo, "GO:0003924", genome.CategoryMolecularFunction)
	kept := mustFunction(t, repo, "GO:0008150", genome.CategoryBiologicalProcess)
	_, err := repo.Associate(ctx, g.ID, f.ID, "IDA")
	require.NoError(t, err)
	_, err = repo.Associate(ctx, g.ID, kept.ID, "")
	require.NoError(t, err)

	deleted, err := repo.DeleteFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindFunction(ctx, f.ID)
	assert.ErrorIs(t, err, genome.ErrNotFound)
	assocs, err := repo.ListAssociationsByGene(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	assert.Equal(t, kept.ID, assocs[0].FunctionID)

	deleted, err = repo.DeleteFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testAssociations(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	c := MustChromosome(t, repo, "chr1", 1000, "")
	g1 := MustGene(t, repo, c.ID, "G1", 10, 20)
	g2 := MustGene(t, repo, c.ID, "G2", 30, 40)
	f := &genome.Function{Code: "GO:0005525", Name: "GTP binding", Category: genome.CategoryMolecularFunction}
	require.NoError(t, repo.CreateFunction(ctx, f))

	a, err := repo.Associate(ctx, g1.ID, f.ID, "IDA")
	require.NoError(t, err)
	assert.Equal(t, "IDA", a.Evidence)
	_, err = repo.Associate(ctx, g2.ID, f.ID, "")
	require.NoError(t, err)

	_, err = repo.Associate(ctx, g1.ID, f.ID, "IEA")
	assert.ErrorIs(t, err, genome.ErrConflict)
	_, err = repo.Associate(ctx, 9999, f.ID, "")
	assert.ErrorIs(t, err, genome.ErrNotFound)
	_, err = repo.Associate(ctx, g1.ID, 9999, "")
	assert.ErrorIs(t, err, genome.ErrNotFound)

	byGene, err := repo.ListAssociationsByGene(ctx, g1.ID)
	require.NoError(t, err)
	require.Len(t, byGene, 1)
	assert.Equal(t, f.ID, byGene[0].FunctionID)

	byFunction, err := repo.ListAssociationsByFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, byFunction, 2)

	ok, err := repo.DeleteGene(ctx, g2.ID)
	require.NoError(t, err)
	require.True(t, ok)
	byFunction, err = repo.ListAssociationsByFunction(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, byFunction, 1, "deleting a gene removes its associations")

	ok, err = repo.Dissociate(ctx, g1.ID, f.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Dissociate(ctx, g1.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

package sequence

import (
	"context"
	"fmt"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/store"
)

// GeneView reads and replaces the sequences stored on genes.
type GeneView struct {
	repo store.GeneRepository
}

// NewGeneView creates a gene sequence view over repo.
func NewGeneView(repo store.GeneRepository) *GeneView {
	return &GeneView{repo: repo}
}

// Sequence returns the stored sequence of a gene.
func (v *GeneView) Sequence(ctx context.Context, geneID int64) (string, error) {
	g, err := v.repo.FindGene(ctx, geneID)
	if err != nil {
		return "", err
	}
	return DeriveGeneSequence(g)
}

// Replace sets a gene's sequence and persists it.
func (v *GeneView) Replace(ctx context.Context, geneID int64, seq string) (*genome.Gene, error) {
	g, err := v.repo.FindGene(ctx, geneID)
	if err != nil {
		return nil, err
	}
	if err := ReplaceGeneSequence(g, seq); err != nil {
		return nil, err
	}
	if err := v.repo.SaveGene(ctx, g); err != nil {
		return nil, fmt.Errorf("save gene %d: %w", geneID, err)
	}
	return g, nil
}

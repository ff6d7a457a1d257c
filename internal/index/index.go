// Package index manages a chromosome's gene intervals and answers range
// overlap queries against them.
package index

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/store"
)

// Repository is the subset of store.Repository the index needs.
type Repository interface {
	store.GeneRepository
	FindChromosome(ctx context.Context, id int64) (*genome.Chromosome, error)
}

// Index validates gene intervals against their chromosome and queries overlaps.
type Index struct {
	repo   Repository
	logger *zap.Logger
}

// New creates an index over repo.
func New(repo Repository) *Index {
	return &Index{
		repo:   repo,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (ix *Index) SetLogger(l *zap.Logger) {
	ix.logger = l
}

// ValidateGene checks a new gene against its chromosome.
// Overlap with other genes is never an error.
func ValidateGene(g *genome.Gene, c *genome.Chromosome) error {
	if err := validateFields(g); err != nil {
		return err
	}
	if err := g.Interval().Validate(); err != nil {
		return err
	}
	if g.End > c.Length {
		return fmt.Errorf("%w: gene end %d exceeds chromosome %s length %d",
			genome.ErrOutOfBounds, g.End, c.Name, c.Length)
	}
	if g.HasSequence() && int64(len(g.Sequence)) != g.Interval().Len() {
		return fmt.Errorf("%w: gene sequence has %d bases, interval %s spans %d",
			genome.ErrLengthMismatch, len(g.Sequence), g.Interval(), g.Interval().Len())
	}
	return nil
}

func validateFields(g *genome.Gene) error {
	if err := genome.ValidateName("symbol", g.Symbol); err != nil {
		return err
	}
	_, err := genome.ParseStrand(string(g.Strand))
	return err
}

// Create validates and stores a new gene.
func (ix *Index) Create(ctx context.Context, g *genome.Gene) (*genome.Gene, error) {
	if err := validateFields(g); err != nil {
		return nil, err
	}
	c, err := ix.repo.FindChromosome(ctx, g.ChromosomeID)
	if err != nil {
		return nil, err
	}
	if err := ValidateGene(g, c); err != nil {
		return nil, err
	}

	created := g.Clone()
	if err := ix.repo.CreateGene(ctx, created); err != nil {
		return nil, fmt.Errorf("create gene %s: %w", g.Symbol, err)
	}
	ix.logger.Debug("gene created",
		zap.Int64("gene_id", created.ID),
		zap.Int64("chromosome_id", created.ChromosomeID),
		zap.Stringer("interval", created.Interval()))
	return created, nil
}

// Get returns a gene by id.
func (ix *Index) Get(ctx context.Context, id int64) (*genome.Gene, error) {
	return ix.repo.FindGene(ctx, id)
}

// ListByChromosome returns all genes on a chromosome ordered by start.
func (ix *Index) ListByChromosome(ctx context.Context, chromosomeID int64) ([]*genome.Gene, error) {
	return ix.repo.FindGenesByChromosome(ctx, chromosomeID)
}

// Search returns genes whose symbol contains fragment, ignoring case.
func (ix *Index) Search(ctx context.Context, fragment string) ([]*genome.Gene, error) {
	return ix.repo.SearchGenesBySymbol(ctx, fragment)
}

// QueryOverlaps returns the genes overlapping [start, end) on a chromosome,
// ordered by (Start, ID). The chromosome itself is not looked up.
func (ix *Index) QueryOverlaps(ctx context.Context, chromosomeID, start, end int64) ([]*genome.Gene, error) {
	iv := genome.Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	return ix.repo.FindGenesOverlapping(ctx, chromosomeID, start, end)
}

// QueryOverlapsBatch answers many overlap queries against one chromosome,
// loading its genes once. result[i] holds the overlaps of intervals[i].
func (ix *Index) QueryOverlapsBatch(ctx context.Context, chromosomeID int64, intervals []genome.Interval) ([][]*genome.Gene, error) {
	for _, iv := range intervals {
		if err := iv.Validate(); err != nil {
			return nil, err
		}
	}

	genes, err := ix.repo.FindGenesByChromosome(ctx, chromosomeID)
	if err != nil {
		return nil, err
	}
	tree := BuildTree(genes)

	result := make([][]*genome.Gene, len(intervals))
	for i, iv := range intervals {
		result[i] = tree.FindOverlaps(iv.Start, iv.End)
	}
	return result, nil
}

// Update applies a partial update to a gene. Only supplied fields change.
//
// The resulting interval is not re-validated: an update may
// leave Start >= End or End beyond the chromosome length. Callers that need
// the creation invariants must check them.
func (ix *Index) Update(ctx context.Context, id int64, u genome.GeneUpdate) (*genome.Gene, error) {
	g, err := ix.repo.FindGene(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.ChromosomeID != nil {
		if _, err := ix.repo.FindChromosome(ctx, *u.ChromosomeID); err != nil {
			return nil, err
		}
	}
	if u.Symbol != nil {
		if err := genome.ValidateName("symbol", *u.Symbol); err != nil {
			return nil, err
		}
	}
	if u.Strand != nil {
		if _, err := genome.ParseStrand(string(*u.Strand)); err != nil {
			return nil, err
		}
	}

	u.Apply(g)
	if g.Start >= g.End {
		ix.logger.Warn("gene interval is empty or inverted after update",
			zap.Int64("gene_id", g.ID),
			zap.Int64("start", g.Start),
			zap.Int64("end", g.End))
	}

	if err := ix.repo.SaveGene(ctx, g); err != nil {
		return nil, fmt.Errorf("save gene %d: %w", id, err)
	}
	return g, nil
}

// Delete removes a gene. It returns false if the gene did not exist.
func (ix *Index) Delete(ctx context.Context, id int64) (bool, error) {
	return ix.repo.DeleteGene(ctx, id)
}

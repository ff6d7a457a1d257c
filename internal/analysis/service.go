package analysis

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/index"
	"github.com/inodb/genomebank/internal/store"
)

// GeneRange is one gene overlapping a queried range.
type GeneRange struct {
	GeneID         int64  `json:"geneId"`
	Symbol         string `json:"symbol"`
	StartPosition  int64  `json:"startPosition"`
	EndPosition    int64  `json:"endPosition"`
	Strand         string `json:"strand"`
	ChromosomeName string `json:"chromosomeName"`
}

// SequenceStats is the composition of a chromosome sequence plus its gene count.
type SequenceStats struct {
	ChromosomeID   int64   `json:"chromosomeId"`
	ChromosomeName string  `json:"chromosomeName"`
	SequenceLength int     `json:"sequenceLength"`
	GeneCount      int     `json:"geneCount"`
	GCPercentage   float64 `json:"gcPercentage"`
	ACount         int     `json:"aCount"`
	CCount         int     `json:"cCount"`
	GCount         int     `json:"gCount"`
	TCount         int     `json:"tCount"`
	NCount         int     `json:"nCount"`
}

// Service combines chromosome lookups, the gene index and composition analysis.
type Service struct {
	chromosomes store.ChromosomeRepository
	index       *index.Index
	logger      *zap.Logger
	workers     int
}

// NewService creates an analysis service. If workers is 0, runtime.NumCPU() is used.
func NewService(chromosomes store.ChromosomeRepository, ix *index.Index, workers int) *Service {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Service{
		chromosomes: chromosomes,
		index:       ix,
		logger:      zap.NewNop(),
		workers:     workers,
	}
}

// SetLogger sets the logger for warning and debug messages.
func (s *Service) SetLogger(l *zap.Logger) {
	s.logger = l
}

// GenesInRange returns the genes overlapping [start, end) on a chromosome.
// An unknown chromosome is reported before a malformed range.
func (s *Service) GenesInRange(ctx context.Context, chromosomeID, start, end int64) ([]GeneRange, error) {
	c, err := s.chromosomes.FindChromosome(ctx, chromosomeID)
	if err != nil {
		return nil, err
	}
	genes, err := s.index.QueryOverlaps(ctx, chromosomeID, start, end)
	if err != nil {
		return nil, err
	}
	return toGeneRanges(c, genes), nil
}

// GenesInRegions answers several range queries on one chromosome, loading its
// genes once.
func (s *Service) GenesInRegions(ctx context.Context, chromosomeID int64, regions []genome.Interval) ([][]GeneRange, error) {
	c, err := s.chromosomes.FindChromosome(ctx, chromosomeID)
	if err != nil {
		return nil, err
	}
	batch, err := s.index.QueryOverlapsBatch(ctx, chromosomeID, regions)
	if err != nil {
		return nil, err
	}
	result := make([][]GeneRange, len(batch))
	for i, genes := range batch {
		result[i] = toGeneRanges(c, genes)
	}
	return result, nil
}

func toGeneRanges(c *genome.Chromosome, genes []*genome.Gene) []GeneRange {
	result := make([]GeneRange, len(genes))
	for i, g := range genes {
		result[i] = GeneRange{
			GeneID:         g.ID,
			Symbol:         g.Symbol,
			StartPosition:  g.Start,
			EndPosition:    g.End,
			Strand:         string(g.Strand),
			ChromosomeName: c.Name,
		}
	}
	return result
}

// SequenceStats analyzes a chromosome's sequence and counts the genes
// overlapping its full length.
func (s *Service) SequenceStats(ctx context.Context, chromosomeID int64) (*SequenceStats, error) {
	c, err := s.chromosomes.FindChromosome(ctx, chromosomeID)
	if err != nil {
		return nil, err
	}
	return s.stats(ctx, c)
}

func (s *Service) stats(ctx context.Context, c *genome.Chromosome) (*SequenceStats, error) {
	if !c.HasSequence() {
		return nil, fmt.Errorf("chromosome %d (%s): %w", c.ID, c.Name, genome.ErrSequenceUnavailable)
	}

	genes, err := s.index.QueryOverlaps(ctx, c.ID, 0, c.Length)
	if err != nil {
		return nil, fmt.Errorf("count genes on %s: %w", c.Name, err)
	}

	comp := Analyze(c.Sequence)
	return &SequenceStats{
		ChromosomeID:   c.ID,
		ChromosomeName: c.Name,
		SequenceLength: comp.Length,
		GeneCount:      len(genes),
		GCPercentage:   comp.GCPercent,
		ACount:         comp.A,
		CCount:         comp.C,
		GCount:         comp.G,
		TCount:         comp.T,
		NCount:         comp.N,
	}, nil
}

// Report computes stats for every chromosome that has a sequence, ordered by
// chromosome id. Chromosomes are analyzed concurrently; the first error
// cancels the rest.
func (s *Service) Report(ctx context.Context) ([]*SequenceStats, error) {
	chromosomes, err := s.chromosomes.ListChromosomes(ctx)
	if err != nil {
		return nil, err
	}

	var withSeq []*genome.Chromosome
	for _, c := range chromosomes {
		if !c.HasSequence() {
			s.logger.Debug("skipping chromosome without sequence",
				zap.Int64("chromosome_id", c.ID),
				zap.String("name", c.Name))
			continue
		}
		withSeq = append(withSeq, c)
	}

	results := make([]*SequenceStats, len(withSeq))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range withSeq {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := s.stats(ctx, c)
			if err != nil {
				return err
			}
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/index"
	"github.com/inodb/genomebank/internal/sequence"
	"github.com/inodb/genomebank/internal/store"
)

// Repository is what an import writes to.
type Repository interface {
	store.ChromosomeRepository
	store.GeneRepository
}

// ImportSummary counts the outcome of an import.
type ImportSummary struct {
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
}

func (s ImportSummary) String() string {
	return fmt.Sprintf("created %d, updated %d, unchanged %d, skipped %d",
		s.Created, s.Updated, s.Unchanged, s.Skipped)
}

// Importer loads FASTA and GTF files into a repository.
type Importer struct {
	repo      Repository
	sequences *sequence.Store
	logger    *zap.Logger
}

// NewImporter creates an importer writing to repo.
func NewImporter(repo Repository) *Importer {
	return &Importer{
		repo:      repo,
		sequences: sequence.NewStore(repo),
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (im *Importer) SetLogger(l *zap.Logger) {
	im.logger = l
	im.sequences.SetLogger(l)
}

// ImportFASTA loads every record of a FASTA file. A record naming an unknown
// chromosome creates it with the record's length. A record naming an existing
// chromosome replaces its sequence when the length matches and the content
// differs; a length mismatch or a nameless record is skipped with a warning.
func (im *Importer) ImportFASTA(ctx context.Context, path string) (ImportSummary, error) {
	var sum ImportSummary

	f, err := Open(path)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	r := NewFASTAReader(f)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, genome.ErrInvalidInput) {
			im.logger.Warn("skipping FASTA record", zap.String("path", path), zap.Error(err))
			sum.Skipped++
			continue
		}
		if err != nil {
			return sum, err
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := im.importRecord(ctx, rec, &sum); err != nil {
			return sum, err
		}
	}

	im.logger.Info("imported FASTA", zap.String("path", path), zap.Stringer("summary", sum))
	return sum, nil
}

func (im *Importer) importRecord(ctx context.Context, rec *Record, sum *ImportSummary) error {
	existing, err := im.repo.FindChromosomeByName(ctx, rec.Name)
	if errors.Is(err, genome.ErrNotFound) {
		if _, err := im.sequences.Create(ctx, rec.Name, int64(len(rec.Sequence)), rec.Sequence); err != nil {
			if errors.Is(err, genome.ErrInvalidInput) {
				im.logger.Warn("skipping FASTA record", zap.String("name", rec.Name), zap.Error(err))
				sum.Skipped++
				return nil
			}
			return err
		}
		sum.Created++
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case int64(len(rec.Sequence)) != existing.Length:
		im.logger.Warn("skipping FASTA record: length differs from chromosome",
			zap.String("name", rec.Name),
			zap.Int64("chromosome_id", existing.ID),
			zap.Int64("length", existing.Length),
			zap.Int("sequence_length", len(rec.Sequence)))
		sum.Skipped++
	case existing.Checksum == genome.SequenceChecksum(rec.Sequence):
		sum.Unchanged++
	default:
		if _, err := im.sequences.Replace(ctx, existing.ID, rec.Sequence); err != nil {
			return err
		}
		sum.Updated++
	}
	return nil
}

// ImportGTF loads the gene features of a GTF file. Genes are matched to
// chromosomes by name, trying the name with and without a "chr" prefix.
// Genes that fail validation or name an unknown chromosome are skipped with
// a warning; the rest are stored in one batch.
func (im *Importer) ImportGTF(ctx context.Context, path string) (ImportSummary, error) {
	var sum ImportSummary

	f, err := Open(path)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	records, malformed, err := ParseGTF(f)
	if err != nil {
		return sum, err
	}
	if malformed > 0 {
		im.logger.Warn("skipped malformed GTF lines", zap.String("path", path), zap.Int("count", malformed))
	}
	sum.Skipped += malformed

	chromosomes := make(map[string]*genome.Chromosome)
	var genes []*genome.Gene
	for _, rec := range records {
		c, err := im.resolveChromosome(ctx, chromosomes, rec.Chrom)
		if err != nil {
			return sum, err
		}
		if c == nil {
			sum.Skipped++
			continue
		}

		g := &genome.Gene{
			ChromosomeID: c.ID,
			Symbol:       rec.Symbol,
			Start:        rec.Start,
			End:          rec.End,
			Strand:       genome.Strand(rec.Strand),
		}
		if err := index.ValidateGene(g, c); err != nil {
			im.logger.Warn("skipping GTF gene",
				zap.String("gene_id", rec.GeneID),
				zap.String("chrom", rec.Chrom),
				zap.Error(err))
			sum.Skipped++
			continue
		}
		genes = append(genes, g)
	}

	if err := im.repo.CreateGenes(ctx, genes); err != nil {
		return sum, fmt.Errorf("store genes: %w", err)
	}
	sum.Created = len(genes)

	im.logger.Info("imported GTF", zap.String("path", path), zap.Stringer("summary", sum))
	return sum, nil
}

// resolveChromosome looks up a chromosome by GTF name, caching misses as nil.
func (im *Importer) resolveChromosome(ctx context.Context, cache map[string]*genome.Chromosome, name string) (*genome.Chromosome, error) {
	if c, ok := cache[name]; ok {
		return c, nil
	}

	candidates := []string{name}
	if trimmed, ok := strings.CutPrefix(name, "chr"); ok {
		candidates = append(candidates, trimmed)
	} else {
		candidates = append(candidates, "chr"+name)
	}

	for _, candidate := range candidates {
		c, err := im.repo.FindChromosomeByName(ctx, candidate)
		if errors.Is(err, genome.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cache[name] = c
		return c, nil
	}

	im.logger.Warn("GTF chromosome not found, skipping its genes", zap.String("chrom", name))
	cache[name] = nil
	return nil, nil
}

package sequence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/store"
)

// Store manages chromosomes and their sequences.
type Store struct {
	repo   store.ChromosomeRepository
	logger *zap.Logger
}

// NewStore creates a sequence store over repo.
func NewStore(repo store.ChromosomeRepository) *Store {
	return &Store{
		repo:   repo,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Create validates and stores a new chromosome. An empty sequence means the
// chromosome has none yet.
func (s *Store) Create(ctx context.Context, name string, length int64, seq string) (*genome.Chromosome, error) {
	if err := genome.ValidateName("name", name); err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length must be positive, got %d", genome.ErrInvalidInput, length)
	}
	if seq != "" && int64(len(seq)) != length {
		return nil, fmt.Errorf("%w: chromosome %s has length %d, sequence has %d",
			genome.ErrLengthMismatch, name, length, len(seq))
	}

	c := &genome.Chromosome{Name: name, Length: length}
	c.SetSequence(seq)
	if err := s.repo.CreateChromosome(ctx, c); err != nil {
		return nil, fmt.Errorf("create chromosome %s: %w", name, err)
	}
	s.logger.Debug("chromosome created",
		zap.Int64("chromosome_id", c.ID),
		zap.String("name", c.Name),
		zap.Int64("length", c.Length))
	return c, nil
}

// Get returns a chromosome by id.
func (s *Store) Get(ctx context.Context, id int64) (*genome.Chromosome, error) {
	return s.repo.FindChromosome(ctx, id)
}

// GetByName returns a chromosome by name.
func (s *Store) GetByName(ctx context.Context, name string) (*genome.Chromosome, error) {
	return s.repo.FindChromosomeByName(ctx, name)
}

// List returns all chromosomes ordered by id.
func (s *Store) List(ctx context.Context) ([]*genome.Chromosome, error) {
	return s.repo.ListChromosomes(ctx)
}

// Update applies a partial update. A new length is not checked against the
// stored sequence or the chromosome's genes.
func (s *Store) Update(ctx context.Context, id int64, u genome.ChromosomeUpdate) (*genome.Chromosome, error) {
	c, err := s.repo.FindChromosome(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		if err := genome.ValidateName("name", *u.Name); err != nil {
			return nil, err
		}
		c.Name = *u.Name
	}
	if u.Length != nil {
		if *u.Length <= 0 {
			return nil, fmt.Errorf("%w: length must be positive, got %d", genome.ErrInvalidInput, *u.Length)
		}
		if c.HasSequence() && *u.Length != int64(len(c.Sequence)) {
			s.logger.Warn("chromosome length no longer matches its sequence",
				zap.Int64("chromosome_id", id),
				zap.Int64("length", *u.Length),
				zap.Int("sequence_length", len(c.Sequence)))
		}
		c.Length = *u.Length
	}

	if err := s.repo.SaveChromosome(ctx, c); err != nil {
		return nil, fmt.Errorf("save chromosome %d: %w", id, err)
	}
	return c, nil
}

// Delete removes a chromosome with its genes. It returns false if the
// chromosome did not exist.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.DeleteChromosome(ctx, id)
}

// Full returns the chromosome's whole sequence.
func (s *Store) Full(ctx context.Context, id int64) (string, error) {
	c, err := s.withSequence(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Sequence, nil
}

// Range returns the half-open slice [start, end) of the chromosome's sequence.
func (s *Store) Range(ctx context.Context, id, start, end int64) (string, error) {
	c, err := s.withSequence(ctx, id)
	if err != nil {
		return "", err
	}
	return Subsequence(c.Sequence, start, end)
}

// Replace overwrites the whole sequence in one write. The new sequence must
// match the declared length.
func (s *Store) Replace(ctx context.Context, id int64, seq string) (*genome.Chromosome, error) {
	c, err := s.repo.FindChromosome(ctx, id)
	if err != nil {
		return nil, err
	}
	if int64(len(seq)) != c.Length {
		return nil, fmt.Errorf("%w: chromosome %s has length %d, sequence has %d",
			genome.ErrLengthMismatch, c.Name, c.Length, len(seq))
	}

	c.SetSequence(seq)
	if err := s.repo.SaveChromosome(ctx, c); err != nil {
		return nil, fmt.Errorf("save chromosome %d: %w", id, err)
	}
	s.logger.Debug("chromosome sequence replaced",
		zap.Int64("chromosome_id", id),
		zap.String("checksum", c.Checksum))
	return c, nil
}

func (s *Store) withSequence(ctx context.Context, id int64) (*genome.Chromosome, error) {
	c, err := s.repo.FindChromosome(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.HasSequence() {
		return nil, fmt.Errorf("chromosome %d (%s): %w", id, c.Name, genome.ErrSequenceUnavailable)
	}
	return c, nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inodb/genomebank/internal/genome"
)

const chromosomeColumns = `id, name, seq_length, seq, checksum, created_at`

func scanChromosome(r rowScanner) (*genome.Chromosome, error) {
	var c genome.Chromosome
	var seq, checksum sql.NullString
	if err := r.Scan(&c.ID, &c.Name, &c.Length, &seq, &checksum, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Sequence = seq.String
	c.Checksum = checksum.String
	return &c, nil
}

// CreateChromosome inserts c and assigns its id.
func (s *Store) CreateChromosome(ctx context.Context, c *genome.Chromosome) error {
	c.CreatedAt = time.Now().UTC()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO chromosomes (name, seq_length, seq, checksum, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		c.Name, c.Length, nullString(c.Sequence), nullString(c.Checksum), c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert chromosome: %w", err)
	}
	return nil
}

// FindChromosome returns the chromosome with the given id.
func (s *Store) FindChromosome(ctx context.Context, id int64) (*genome.Chromosome, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chromosomeColumns+` FROM chromosomes WHERE id = ?`, id)
	c, err := scanChromosome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chromosome %d: %w", id, genome.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query chromosome: %w", err)
	}
	return c, nil
}

// FindChromosomeByName returns the oldest chromosome with the given name.
func (s *Store) FindChromosomeByName(ctx context.Context, name string) (*genome.Chromosome, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chromosomeColumns+` FROM chromosomes WHERE name = ? ORDER BY id LIMIT 1`, name)
	c, err := scanChromosome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chromosome %q: %w", name, genome.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query chromosome: %w", err)
	}
	return c, nil
}

// ListChromosomes returns all chromosomes ordered by id.
func (s *Store) ListChromosomes(ctx context.Context) ([]*genome.Chromosome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chromosomeColumns+` FROM chromosomes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query chromosomes: %w", err)
	}
	defer rows.Close()

	var result []*genome.Chromosome
	for rows.Next() {
		c, err := scanChromosome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chromosome: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chromosomes: %w", err)
	}
	return result, nil
}

// SaveChromosome overwrites the mutable chromosome fields in a single statement.
func (s *Store) SaveChromosome(ctx context.Context, c *genome.Chromosome) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chromosomes SET name = ?, seq_length = ?, seq = ?, checksum = ? WHERE id = ?`,
		c.Name, c.Length, nullString(c.Sequence), nullString(c.Checksum), c.ID)
	if err != nil {
		return fmt.Errorf("update chromosome: %w", err)
	}
	return requireAffected(res, "chromosome", c.ID)
}

// DeleteChromosome removes the chromosome together with its genes and their associations.
func (s *Store) DeleteChromosome(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM gene_functions WHERE gene_id IN (SELECT id FROM genes WHERE chromosome_id = ?)`, id); err != nil {
			return fmt.Errorf("delete gene functions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM genes WHERE chromosome_id = ?`, id); err != nil {
			return fmt.Errorf("delete genes: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM chromosomes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete chromosome: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

func requireAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, genome.ErrNotFound)
	}
	return nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inodb/genomebank/internal/genome"
)

const geneColumns = `id, chromosome_id, symbol, start_pos, end_pos, strand, seq, created_at`

const insertGene = `INSERT INTO genes (chromosome_id, symbol, start_pos, end_pos, strand, seq, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`

func scanGene(r rowScanner) (*genome.Gene, error) {
	var g genome.Gene
	var strand string
	var seq sql.NullString
	if err := r.Scan(&g.ID, &g.ChromosomeID, &g.Symbol, &g.Start, &g.End, &strand, &seq, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.Strand = genome.Strand(strand)
	g.Sequence = seq.String
	return &g, nil
}

// scanGenes drains rows into a gene slice.
func scanGenes(rows *sql.Rows) ([]*genome.Gene, error) {
	defer rows.Close()

	var genes []*genome.Gene
	for rows.Next() {
		g, err := scanGene(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		genes = append(genes, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genes: %w", err)
	}
	return genes, nil
}

// CreateGene inserts g and assigns its id.
func (s *Store) CreateGene(ctx context.Context, g *genome.Gene) error {
	g.CreatedAt = time.Now().UTC()
	err := s.db.QueryRowContext(ctx, insertGene,
		g.ChromosomeID, g.Symbol, g.Start, g.End, string(g.Strand), nullString(g.Sequence), g.CreatedAt,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("insert gene: %w", err)
	}
	return nil
}

// CreateGenes inserts all genes in one transaction.
func (s *Store) CreateGenes(ctx context.Context, genes []*genome.Gene) error {
	if len(genes) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertGene)
		if err != nil {
			return fmt.Errorf("prepare gene insert: %w", err)
		}
		defer stmt.Close()

		for _, g := range genes {
			g.CreatedAt = now
			if err := stmt.QueryRowContext(ctx,
				g.ChromosomeID, g.Symbol, g.Start, g.End, string(g.Strand), nullString(g.Sequence), g.CreatedAt,
			).Scan(&g.ID); err != nil {
				return fmt.Errorf("insert gene %s: %w", g.Symbol, err)
			}
		}
		return nil
	})
}

// FindGene returns the gene with the given id.
func (s *Store) FindGene(ctx context.Context, id int64) (*genome.Gene, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+geneColumns+` FROM genes WHERE id = ?`, id)
	g, err := scanGene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gene %d: %w", id, genome.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query gene: %w", err)
	}
	return g, nil
}

// FindGenesByChromosome returns a chromosome's genes ordered by start.
func (s *Store) FindGenesByChromosome(ctx context.Context, chromosomeID int64) ([]*genome.Gene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+geneColumns+` FROM genes WHERE chromosome_id = ? ORDER BY start_pos, id`, chromosomeID)
	if err != nil {
		return nil, fmt.Errorf("query genes by chromosome: %w", err)
	}
	return scanGenes(rows)
}

// FindGenesOverlapping returns genes overlapping the half-open range [start, end).
func (s *Store) FindGenesOverlapping(ctx context.Context, chromosomeID, start, end int64) ([]*genome.Gene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+geneColumns+` FROM genes
		WHERE chromosome_id = ? AND start_pos < ? AND end_pos > ?
		ORDER BY start_pos, id`,
		chromosomeID, end, start)
	if err != nil {
		return nil, fmt.Errorf("query overlapping genes: %w", err)
	}
	return scanGenes(rows)
}

// SearchGenesBySymbol returns genes whose symbol contains fragment, ignoring case.
func (s *Store) SearchGenesBySymbol(ctx context.Context, fragment string) ([]*genome.Gene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+geneColumns+` FROM genes WHERE instr(lower(symbol), ?) > 0 ORDER BY start_pos, id`,
		strings.ToLower(fragment))
	if err != nil {
		return nil, fmt.Errorf("query genes by symbol: %w", err)
	}
	return scanGenes(rows)
}

// SaveGene overwrites the mutable gene fields.
func (s *Store) SaveGene(ctx context.Context, g *genome.Gene) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE genes SET chromosome_id = ?, symbol = ?, start_pos = ?, end_pos = ?, strand = ?, seq = ?
		WHERE id = ?`,
		g.ChromosomeID, g.Symbol, g.Start, g.End, string(g.Strand), nullString(g.Sequence), g.ID)
	if err != nil {
		return fmt.Errorf("update gene: %w", err)
	}
	return requireAffected(res, "gene", g.ID)
}

// DeleteGene removes the gene and its function associations.
func (s *Store) DeleteGene(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gene_functions WHERE gene_id = ?`, id); err != nil {
			return fmt.Errorf("delete gene functions: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM genes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete gene: %w", err)
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

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

const functionColumns = `id, code, name, category, description, created_at`

func scanFunction(r rowScanner) (*genome.Function, error) {
	var f genome.Function
	var category string
	var description sql.NullString
	if err := r.Scan(&f.ID, &f.Code, &f.Name, &category, &description, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Category = genome.Category(category)
	f.Description = description.String
	return &f, nil
}

// CreateFunction inserts f, rejecting a code that is already taken.
func (s *Store) CreateFunction(ctx context.Context, f *genome.Function) error {
	f.CreatedAt = time.Now().UTC()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := rowExists(ctx, tx, `SELECT 1 FROM functions WHERE code = ?`, f.Code)
		if err != nil {
			return fmt.Errorf("check function code: %w", err)
		}
		if exists {
			return fmt.Errorf("function code %q: %w", f.Code, genome.ErrConflict)
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO functions (code, name, category, description, created_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id`,
			f.Code, f.Name, string(f.Category), nullString(f.Description), f.CreatedAt,
		).Scan(&f.ID); err != nil {
			return fmt.Errorf("insert function: %w", err)
		}
		return nil
	})
}

// FindFunction returns the function with the given id.
func (s *Store) FindFunction(ctx context.Context, id int64) (*genome.Function, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+functionColumns+` FROM functions WHERE id = ?`, id)
	f, err := scanFunction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("function %d: %w", id, genome.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query function: %w", err)
	}
	return f, nil
}

// ListFunctions returns all functions ordered by id.
func (s *Store) ListFunctions(ctx context.Context) ([]*genome.Function, error) {
	return s.queryFunctions(ctx, "")
}

// SearchFunctionsByCode returns functions whose code contains fragment, ignoring case.
func (s *Store) SearchFunctionsByCode(ctx context.Context, fragment string) ([]*genome.Function, error) {
	return s.queryFunctions(ctx, `instr(lower(code), ?) > 0`, strings.ToLower(fragment))
}

// ListFunctionsByCategory returns the functions of one category ordered by id.
func (s *Store) ListFunctionsByCategory(ctx context.Context, category genome.Category) ([]*genome.Function, error) {
	return s.queryFunctions(ctx, `category = ?`, string(category))
}

// queryFunctions returns the functions matching an optional where clause, ordered by id.
func (s *Store) queryFunctions(ctx context.Context, where string, args ...any) ([]*genome.Function, error) {
	query := `SELECT ` + functionColumns + ` FROM functions`
	if where != "" {
		query += ` WHERE ` + where
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query functions: %w", err)
	}
	defer rows.Close()

	var result []*genome.Function
	for rows.Next() {
		f, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan function: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate functions: %w", err)
	}
	return result, nil
}

// SaveFunction overwrites the mutable function fields, rejecting a code
// held by another function. The code column is only written when it changes.
func (s *Store) SaveFunction(ctx context.Context, f *genome.Function) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var code string
		err := tx.QueryRowContext(ctx, `SELECT code FROM functions WHERE id = ?`, f.ID).Scan(&code)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("function %d: %w", f.ID, genome.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("query function: %w", err)
		}

		if code == f.Code {
			if _, err := tx.ExecContext(ctx,
				`UPDATE functions SET name = ?, category = ?, description = ? WHERE id = ?`,
				f.Name, string(f.Category), nullString(f.Description), f.ID); err != nil {
				return fmt.Errorf("update function: %w", err)
			}
			return nil
		}

		taken, err := rowExists(ctx, tx, `SELECT 1 FROM functions WHERE code = ? AND id <> ?`, f.Code, f.ID)
		if err != nil {
			return fmt.Errorf("check function code: %w", err)
		}
		if taken {
			return fmt.Errorf("function code %q: %w", f.Code, genome.ErrConflict)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE functions SET code = ?, name = ?, category = ?, description = ? WHERE id = ?`,
			f.Code, f.Name, string(f.Category), nullString(f.Description), f.ID); err != nil {
			return fmt.Errorf("update function: %w", err)
		}
		return nil
	})
}

// DeleteFunction removes the function and its gene associations.
func (s *Store) DeleteFunction(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gene_functions WHERE function_id = ?`, id); err != nil {
			return fmt.Errorf("delete function associations: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM functions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete function: %w", err)
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

// Associate links a gene to a function.
func (s *Store) Associate(ctx context.Context, geneID, functionID int64, evidence string) (*genome.Association, error) {
	a := &genome.Association{
		GeneID:     geneID,
		FunctionID: functionID,
		Evidence:   evidence,
		CreatedAt:  time.Now().UTC(),
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		checks := []struct {
			query string
			id    int64
			kind  string
		}{
			{`SELECT 1 FROM genes WHERE id = ?`, geneID, "gene"},
			{`SELECT 1 FROM functions WHERE id = ?`, functionID, "function"},
		}
		for _, c := range checks {
			exists, err := rowExists(ctx, tx, c.query, c.id)
			if err != nil {
				return fmt.Errorf("check %s: %w", c.kind, err)
			}
			if !exists {
				return fmt.Errorf("%s %d: %w", c.kind, c.id, genome.ErrNotFound)
			}
		}

		exists, err := rowExists(ctx, tx,
			`SELECT 1 FROM gene_functions WHERE gene_id = ? AND function_id = ?`, geneID, functionID)
		if err != nil {
			return fmt.Errorf("check association: %w", err)
		}
		if exists {
			return fmt.Errorf("gene %d, function %d: association %w", geneID, functionID, genome.ErrConflict)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gene_functions (gene_id, function_id, evidence, created_at) VALUES (?, ?, ?, ?)`,
			geneID, functionID, nullString(evidence), a.CreatedAt); err != nil {
			return fmt.Errorf("insert association: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Dissociate removes the link between a gene and a function.
func (s *Store) Dissociate(ctx context.Context, geneID, functionID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM gene_functions WHERE gene_id = ? AND function_id = ?`, geneID, functionID)
	if err != nil {
		return false, fmt.Errorf("delete association: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListAssociationsByGene returns all functions linked to a gene.
func (s *Store) ListAssociationsByGene(ctx context.Context, geneID int64) ([]*genome.Association, error) {
	return s.listAssociations(ctx, `gene_id = ?`, geneID)
}

// ListAssociationsByFunction returns all genes linked to a function.
func (s *Store) ListAssociationsByFunction(ctx context.Context, functionID int64) ([]*genome.Association, error) {
	return s.listAssociations(ctx, `function_id = ?`, functionID)
}

func (s *Store) listAssociations(ctx context.Context, where string, id int64) ([]*genome.Association, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT gene_id, function_id, evidence, created_at FROM gene_functions
		WHERE `+where+` ORDER BY gene_id, function_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query associations: %w", err)
	}
	defer rows.Close()

	var result []*genome.Association
	for rows.Next() {
		var a genome.Association
		var evidence sql.NullString
		if err := rows.Scan(&a.GeneID, &a.FunctionID, &evidence, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		a.Evidence = evidence.String
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate associations: %w", err)
	}
	return result, nil
}

// rowExists reports whether query returns at least one row.
func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

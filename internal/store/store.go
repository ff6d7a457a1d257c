// Package store defines the persistence interface used by the sequence, index
// and analysis packages, plus an in-memory implementation.
package store

import (
	"context"

	"github.com/inodb/genomebank/internal/genome"
)

// ChromosomeRepository persists chromosomes.
// Lookups of unknown ids return an error wrapping genome.ErrNotFound.
type ChromosomeRepository interface {
	// CreateChromosome assigns c.ID and c.CreatedAt and stores c.
	CreateChromosome(ctx context.Context, c *genome.Chromosome) error
	FindChromosome(ctx context.Context, id int64) (*genome.Chromosome, error)
	FindChromosomeByName(ctx context.Context, name string) (*genome.Chromosome, error)
	// ListChromosomes returns all chromosomes ordered by id.
	ListChromosomes(ctx context.Context) ([]*genome.Chromosome, error)
	// SaveChromosome overwrites the stored name, length, sequence and checksum in one write.
	SaveChromosome(ctx context.Context, c *genome.Chromosome) error
	// DeleteChromosome removes the chromosome, its genes and their associations.
	DeleteChromosome(ctx context.Context, id int64) (bool, error)
}

// GeneRepository persists genes. Gene lists are ordered by (Start, ID).
type GeneRepository interface {
	CreateGene(ctx context.Context, g *genome.Gene) error
	// CreateGenes stores all genes or none.
	CreateGenes(ctx context.Context, genes []*genome.Gene) error
	FindGene(ctx context.Context, id int64) (*genome.Gene, error)
	FindGenesByChromosome(ctx context.Context, chromosomeID int64) ([]*genome.Gene, error)
	// FindGenesOverlapping returns genes with Start < end and start < End.
	FindGenesOverlapping(ctx context.Context, chromosomeID, start, end int64) ([]*genome.Gene, error)
	// SearchGenesBySymbol matches a case-insensitive symbol substring.
	SearchGenesBySymbol(ctx context.Context, fragment string) ([]*genome.Gene, error)
	SaveGene(ctx context.Context, g *genome.Gene) error
	// DeleteGene removes the gene and its associations.
	DeleteGene(ctx context.Context, id int64) (bool, error)
}

// FunctionRepository persists functions and gene-function associations.
type FunctionRepository interface {
	// CreateFunction fails with genome.ErrConflict if the code is taken.
	CreateFunction(ctx context.Context, f *genome.Function) error
	FindFunction(ctx context.Context, id int64) (*genome.Function, error)
	ListFunctions(ctx context.Context) ([]*genome.Function, error)
	// SearchFunctionsByCode matches a case-insensitive code substring.
	SearchFunctionsByCode(ctx context.Context, fragment string) ([]*genome.Function, error)
	ListFunctionsByCategory(ctx context.Context, category genome.Category) ([]*genome.Function, error)
	// SaveFunction overwrites the stored fields. It fails with
	// genome.ErrConflict if another function already has f.Code.
	SaveFunction(ctx context.Context, f *genome.Function) error
	// DeleteFunction removes the function and its associations.
	DeleteFunction(ctx context.Context, id int64) (bool, error)
	// Associate fails with genome.ErrNotFound if either side is missing and
	// genome.ErrConflict if the pair is already associated.
	Associate(ctx context.Context, geneID, functionID int64, evidence string) (*genome.Association, error)
	Dissociate(ctx context.Context, geneID, functionID int64) (bool, error)
	ListAssociationsByGene(ctx context.Context, geneID int64) ([]*genome.Association, error)
	ListAssociationsByFunction(ctx context.Context, functionID int64) ([]*genome.Association, error)
}

// Repository is the full persistence collaborator.
type Repository interface {
	ChromosomeRepository
	GeneRepository
	FunctionRepository
	Close() error
}

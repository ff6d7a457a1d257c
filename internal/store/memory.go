package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/inodb/genomebank/internal/genome"
)

// geneKey orders a chromosome's genes by start position, then id.
type geneKey struct {
	start int64
	id    int64
}

func lessGeneKey(a, b geneKey) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	return a.id < b.id
}

type associationKey struct {
	geneID, functionID int64
}

// MemStore is an in-memory Repository. All records are copied on the way in
// and out, so callers never share state with the store.
type MemStore struct {
	mu sync.RWMutex

	nextChromosomeID int64
	nextGeneID       int64
	nextFunctionID   int64

	chromosomes  map[int64]*genome.Chromosome
	genes        map[int64]*genome.Gene
	byChromosome map[int64]*btree.BTreeG[geneKey]
	functions    map[int64]*genome.Function
	associations map[associationKey]*genome.Association
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		chromosomes:  make(map[int64]*genome.Chromosome),
		genes:        make(map[int64]*genome.Gene),
		byChromosome: make(map[int64]*btree.BTreeG[geneKey]),
		functions:    make(map[int64]*genome.Function),
		associations: make(map[associationKey]*genome.Association),
	}
}

// Close is a no-op.
func (s *MemStore) Close() error {
	return nil
}

// --- chromosomes ---

func (s *MemStore) CreateChromosome(ctx context.Context, c *genome.Chromosome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextChromosomeID++
	c.ID = s.nextChromosomeID
	c.CreatedAt = time.Now().UTC()
	s.chromosomes[c.ID] = c.Clone()
	return nil
}

func (s *MemStore) FindChromosome(ctx context.Context, id int64) (*genome.Chromosome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chromosomes[id]
	if !ok {
		return nil, fmt.Errorf("chromosome %d: %w", id, genome.ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *MemStore) FindChromosomeByName(ctx context.Context, name string) (*genome.Chromosome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *genome.Chromosome
	for _, c := range s.chromosomes {
		if c.Name == name && (found == nil || c.ID < found.ID) {
			found = c
		}
	}
	if found == nil {
		return nil, fmt.Errorf("chromosome %q: %w", name, genome.ErrNotFound)
	}
	return found.Clone(), nil
}

func (s *MemStore) ListChromosomes(ctx context.Context) ([]*genome.Chromosome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*genome.Chromosome, 0, len(s.chromosomes))
	for _, c := range s.chromosomes {
		result = append(result, c.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemStore) SaveChromosome(ctx context.Context, c *genome.Chromosome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.chromosomes[c.ID]
	if !ok {
		return fmt.Errorf("chromosome %d: %w", c.ID, genome.ErrNotFound)
	}
	saved := c.Clone()
	saved.CreatedAt = existing.CreatedAt
	s.chromosomes[c.ID] = saved
	return nil
}

func (s *MemStore) DeleteChromosome(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chromosomes[id]; !ok {
		return false, nil
	}
	if tree, ok := s.byChromosome[id]; ok {
		tree.Ascend(func(k geneKey) bool {
			s.removeAssociationsLocked(k.id)
			delete(s.genes, k.id)
			return true
		})
		delete(s.byChromosome, id)
	}
	delete(s.chromosomes, id)
	return true, nil
}

// --- genes ---

func (s *MemStore) CreateGene(ctx context.Context, g *genome.Gene) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertGeneLocked(g)
	return nil
}

func (s *MemStore) CreateGenes(ctx context.Context, genes []*genome.Gene) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range genes {
		s.insertGeneLocked(g)
	}
	return nil
}

func (s *MemStore) insertGeneLocked(g *genome.Gene) {
	s.nextGeneID++
	g.ID = s.nextGeneID
	g.CreatedAt = time.Now().UTC()
	s.genes[g.ID] = g.Clone()
	s.chromosomeTreeLocked(g.ChromosomeID).ReplaceOrInsert(geneKey{start: g.Start, id: g.ID})
}

func (s *MemStore) chromosomeTreeLocked(chromosomeID int64) *btree.BTreeG[geneKey] {
	tree, ok := s.byChromosome[chromosomeID]
	if !ok {
		tree = btree.NewG(32, lessGeneKey)
		s.byChromosome[chromosomeID] = tree
	}
	return tree
}

func (s *MemStore) FindGene(ctx context.Context, id int64) (*genome.Gene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.genes[id]
	if !ok {
		return nil, fmt.Errorf("gene %d: %w", id, genome.ErrNotFound)
	}
	return g.Clone(), nil
}

func (s *MemStore) FindGenesByChromosome(ctx context.Context, chromosomeID int64) ([]*genome.Gene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*genome.Gene
	if tree, ok := s.byChromosome[chromosomeID]; ok {
		tree.Ascend(func(k geneKey) bool {
			result = append(result, s.genes[k.id].Clone())
			return true
		})
	}
	return result, nil
}

func (s *MemStore) FindGenesOverlapping(ctx context.Context, chromosomeID, start, end int64) ([]*genome.Gene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.byChromosome[chromosomeID]
	if !ok {
		return nil, nil
	}

	var result []*genome.Gene
	// Every candidate starts before end; filter those that also end after start.
	tree.AscendLessThan(geneKey{start: end, id: math.MinInt64}, func(k geneKey) bool {
		g := s.genes[k.id]
		if g.End > start {
			result = append(result, g.Clone())
		}
		return true
	})
	return result, nil
}

func (s *MemStore) SearchGenesBySymbol(ctx context.Context, fragment string) ([]*genome.Gene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(fragment)
	var result []*genome.Gene
	for _, g := range s.genes {
		if strings.Contains(strings.ToLower(g.Symbol), needle) {
			result = append(result, g.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Start != result[j].Start {
			return result[i].Start < result[j].Start
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemStore) SaveGene(ctx context.Context, g *genome.Gene) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.genes[g.ID]
	if !ok {
		return fmt.Errorf("gene %d: %w", g.ID, genome.ErrNotFound)
	}
	if existing.ChromosomeID != g.ChromosomeID || existing.Start != g.Start {
		s.byChromosome[existing.ChromosomeID].Delete(geneKey{start: existing.Start, id: existing.ID})
		s.chromosomeTreeLocked(g.ChromosomeID).ReplaceOrInsert(geneKey{start: g.Start, id: g.ID})
	}
	saved := g.Clone()
	saved.CreatedAt = existing.CreatedAt
	s.genes[g.ID] = saved
	return nil
}

func (s *MemStore) DeleteGene(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.genes[id]
	if !ok {
		return false, nil
	}
	s.byChromosome[g.ChromosomeID].Delete(geneKey{start: g.Start, id: g.ID})
	s.removeAssociationsLocked(id)
	delete(s.genes, id)
	return true, nil
}

func (s *MemStore) removeAssociationsLocked(geneID int64) {
	for k := range s.associations {
		if k.geneID == geneID {
			delete(s.associations, k)
		}
	}
}

// --- functions ---

func (s *MemStore) CreateFunction(ctx context.Context, f *genome.Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.functions {
		if existing.Code == f.Code {
			return fmt.Errorf("function code %q: %w", f.Code, genome.ErrConflict)
		}
	}
	s.nextFunctionID++
	f.ID = s.nextFunctionID
	f.CreatedAt = time.Now().UTC()
	cp := *f
	s.functions[f.ID] = &cp
	return nil
}

func (s *MemStore) FindFunction(ctx context.Context, id int64) (*genome.Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.functions[id]
	if !ok {
		return nil, fmt.Errorf("function %d: %w", id, genome.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (s *MemStore) ListFunctions(ctx context.Context) ([]*genome.Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*genome.Function, 0, len(s.functions))
	for _, f := range s.functions {
		cp := *f
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemStore) SearchFunctionsByCode(ctx context.Context, fragment string) ([]*genome.Function, error) {
	fragment = strings.ToLower(fragment)
	return s.listFunctions(func(f *genome.Function) bool {
		return strings.Contains(strings.ToLower(f.Code), fragment)
	}), nil
}

func (s *MemStore) ListFunctionsByCategory(ctx context.Context, category genome.Category) ([]*genome.Function, error) {
	return s.listFunctions(func(f *genome.Function) bool { return f.Category == category }), nil
}

func (s *MemStore) listFunctions(match func(*genome.Function) bool) []*genome.Function {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*genome.Function
	for _, f := range s.functions {
		if match(f) {
			cp := *f
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *MemStore) SaveFunction(ctx context.Context, f *genome.Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.functions[f.ID]
	if !ok {
		return fmt.Errorf("function %d: %w", f.ID, genome.ErrNotFound)
	}
	for _, existing := range s.functions {
		if existing.Code == f.Code && existing.ID != f.ID {
			return fmt.Errorf("function code %q: %w", f.Code, genome.ErrConflict)
		}
	}
	cp := *f
	cp.CreatedAt = stored.CreatedAt
	s.functions[f.ID] = &cp
	return nil
}

func (s *MemStore) DeleteFunction(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.functions[id]; !ok {
		return false, nil
	}
	for k := range s.associations {
		if k.functionID == id {
			delete(s.associations, k)
		}
	}
	delete(s.functions, id)
	return true, nil
}

func (s *MemStore) Associate(ctx context.Context, geneID, functionID int64, evidence string) (*genome.Association, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.genes[geneID]; !ok {
		return nil, fmt.Errorf("gene %d: %w", geneID, genome.ErrNotFound)
	}
	if _, ok := s.functions[functionID]; !ok {
		return nil, fmt.Errorf("function %d: %w", functionID, genome.ErrNotFound)
	}
	key := associationKey{geneID, functionID}
	if _, ok := s.associations[key]; ok {
		return nil, fmt.Errorf("gene %d, function %d: association %w", geneID, functionID, genome.ErrConflict)
	}
	a := &genome.Association{
		GeneID:     geneID,
		FunctionID: functionID,
		Evidence:   evidence,
		CreatedAt:  time.Now().UTC(),
	}
	s.associations[key] = a
	cp := *a
	return &cp, nil
}

func (s *MemStore) Dissociate(ctx context.Context, geneID, functionID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := associationKey{geneID, functionID}
	if _, ok := s.associations[key]; !ok {
		return false, nil
	}
	delete(s.associations, key)
	return true, nil
}

func (s *MemStore) ListAssociationsByGene(ctx context.Context, geneID int64) ([]*genome.Association, error) {
	return s.listAssociations(func(k associationKey) bool { return k.geneID == geneID }), nil
}

func (s *MemStore) ListAssociationsByFunction(ctx context.Context, functionID int64) ([]*genome.Association, error) {
	return s.listAssociations(func(k associationKey) bool { return k.functionID == functionID }), nil
}

func (s *MemStore) listAssociations(match func(associationKey) bool) []*genome.Association {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*genome.Association
	for k, a := range s.associations {
		if match(k) {
			cp := *a
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].GeneID != result[j].GeneID {
			return result[i].GeneID < result[j].GeneID
		}
		return result[i].FunctionID < result[j].FunctionID
	})
	return result
}

var _ Repository = (*MemStore)(nil)

package index

import (
	"sort"

	"github.com/inodb/genomebank/internal/genome"
)

// Tree provides O(log n + k) overlap queries using a sorted-slice approach.
// Genes are loaded once and never modified after build.
type Tree struct {
	genes  []*genome.Gene // sorted by (Start, ID)
	maxEnd []int64        // maxEnd[i] = max(End) for genes[:i+1]
}

// BuildTree creates a tree from a slice of genes. The input is not modified.
func BuildTree(genes []*genome.Gene) *Tree {
	if len(genes) == 0 {
		return &Tree{}
	}

	sorted := make([]*genome.Gene, len(genes))
	copy(sorted, genes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].ID < sorted[j].ID
	})

	// Running max-end watermark over the prefix.
	maxEnd := make([]int64, len(sorted))
	maxEnd[0] = sorted[0].End
	for i := 1; i < len(sorted); i++ {
		maxEnd[i] = max(maxEnd[i-1], sorted[i].End)
	}

	return &Tree{genes: sorted, maxEnd: maxEnd}
}

// Len returns the number of genes in the tree.
func (t *Tree) Len() int {
	return len(t.genes)
}

// FindOverlaps returns all genes overlapping [start, end), ordered by (Start, ID).
func (t *Tree) FindOverlaps(start, end int64) []*genome.Gene {
	if len(t.genes) == 0 {
		return nil
	}

	// Candidates must start before end: [0, hi).
	hi := sort.Search(len(t.genes), func(i int) bool {
		return t.genes[i].Start >= end
	})

	var result []*genome.Gene
	for i := hi - 1; i >= 0; i-- {
		// Nothing in genes[:i+1] ends after start.
		if t.maxEnd[i] <= start {
			break
		}
		if t.genes[i].End > start {
			result = append(result, t.genes[i])
		}
	}

	// Scanned right to left; restore ascending order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

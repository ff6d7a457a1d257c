package output

import (
	"bufio"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/inodb/genomebank/internal/analysis"
	"github.com/inodb/genomebank/internal/genome"
)

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONWriter creates a new JSON-lines writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	bw := bufio.NewWriter(w)
	return &JSONWriter{w: bw, enc: json.NewEncoder(bw)}
}

type chromosomeJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Length      int64     `json:"length"`
	HasSequence bool      `json:"hasSequence"`
	Checksum    string    `json:"checksum,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type geneJSON struct {
	ID            int64     `json:"id"`
	ChromosomeID  int64     `json:"chromosomeId"`
	Symbol        string    `json:"symbol"`
	StartPosition int64     `json:"startPosition"`
	EndPosition   int64     `json:"endPosition"`
	Strand        string    `json:"strand"`
	Sequence      string    `json:"sequence,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type functionJSON struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type associationJSON struct {
	GeneID     int64     `json:"geneId"`
	FunctionID int64     `json:"functionId"`
	Evidence   string    `json:"evidence,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type sequenceJSON struct {
	Sequence string `json:"sequence"`
}

// WriteGeneRanges writes genes found by a range query.
func (jw *JSONWriter) WriteGeneRanges(ranges []analysis.GeneRange) error {
	for _, r := range ranges {
		if err := jw.enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats writes composition statistics.
func (jw *JSONWriter) WriteStats(stats []*analysis.SequenceStats) error {
	for _, s := range stats {
		if err := jw.enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteChromosomes writes chromosome summaries without their sequences.
func (jw *JSONWriter) WriteChromosomes(chromosomes []*genome.Chromosome) error {
	for _, c := range chromosomes {
		if err := jw.enc.Encode(chromosomeJSON{
			ID:          c.ID,
			Name:        c.Name,
			Length:      c.Length,
			HasSequence: c.HasSequence(),
			Checksum:    c.Checksum,
			CreatedAt:   c.CreatedAt,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteGenes writes gene records including any stored sequence.
func (jw *JSONWriter) WriteGenes(genes []*genome.Gene) error {
	for _, g := range genes {
		if err := jw.enc.Encode(geneJSON{
			ID:            g.ID,
			ChromosomeID:  g.ChromosomeID,
			Symbol:        g.Symbol,
			StartPosition: g.Start,
			EndPosition:   g.End,
			Strand:        string(g.Strand),
			Sequence:      g.Sequence,
			CreatedAt:     g.CreatedAt,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteFunctions writes gene function records.
func (jw *JSONWriter) WriteFunctions(functions []*genome.Function) error {
	for _, f := range functions {
		if err := jw.enc.Encode(functionJSON{
			ID:          f.ID,
			Code:        f.Code,
			Name:        f.Name,
			Category:    string(f.Category),
			Description: f.Description,
			CreatedAt:   f.CreatedAt,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteAssociations writes gene-function links.
func (jw *JSONWriter) WriteAssociations(associations []*genome.Association) error {
	for _, a := range associations {
		if err := jw.enc.Encode(associationJSON{
			GeneID:     a.GeneID,
			FunctionID: a.FunctionID,
			Evidence:   a.Evidence,
			CreatedAt:  a.CreatedAt,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteSequence writes the sequence payload.
func (jw *JSONWriter) WriteSequence(seq string) error {
	return jw.enc.Encode(sequenceJSON{Sequence: seq})
}

// Flush flushes any buffered data to the underlying writer.
func (jw *JSONWriter) Flush() error {
	return jw.w.Flush()
}

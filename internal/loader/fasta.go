package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/genomebank/internal/genome"
)

// Record is one FASTA entry.
type Record struct {
	Name     string // first token of the header line
	Sequence string
}

// FASTAReader streams records from FASTA content. Sequence lines are
// concatenated with surrounding whitespace removed.
type FASTAReader struct {
	scanner *bufio.Scanner
	header  string // header of the next record, without '>'
	pending bool   // header holds a header line not yet returned
	done    bool
}

// NewFASTAReader creates a reader over r.
func NewFASTAReader(r io.Reader) *FASTAReader {
	scanner := bufio.NewScanner(r)
	// Unwrapped chromosome sequences arrive as a single very long line.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 512*1024*1024)
	return &FASTAReader{scanner: scanner}
}

// Next returns the next record, or io.EOF when there are no more.
func (r *FASTAReader) Next() (*Record, error) {
	if r.done {
		return nil, io.EOF
	}

	// Skip anything before the first header.
	for !r.pending {
		if !r.scanner.Scan() {
			r.done = true
			if err := r.scanner.Err(); err != nil {
				return nil, fmt.Errorf("scan FASTA: %w", err)
			}
			return nil, io.EOF
		}
		if line := r.scanner.Text(); strings.HasPrefix(line, ">") {
			r.header, r.pending = line[1:], true
		}
	}

	rec := &Record{Name: headerName(r.header)}
	r.header, r.pending = "", false

	var seq strings.Builder
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.HasPrefix(line, ">") {
			r.header, r.pending = line[1:], true
			break
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if err := r.scanner.Err(); err != nil {
		r.done = true
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if !r.pending {
		r.done = true
	}

	// The record is consumed either way; the next call resumes at the
	// following header.
	if rec.Name == "" {
		return nil, fmt.Errorf("%w: FASTA record with empty name", genome.ErrInvalidInput)
	}
	rec.Sequence = seq.String()
	return rec, nil
}

// headerName returns the first whitespace-delimited token of a header.
// ">chr1 AC:CM000663.2 gi:568336023" names chr1.
func headerName(header string) string {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

package genome

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// MaxNameLength bounds chromosome names, gene symbols and function codes.
const MaxNameLength = 50

// Chromosome is a named linear sequence of declared length.
type Chromosome struct {
	ID        int64
	Name      string // e.g. chr12
	Length    int64  // declared length in bases
	Sequence  string // empty when no sequence is stored
	Checksum  string // xxhash64 of Sequence, empty when no sequence is stored
	CreatedAt time.Time
}

// HasSequence returns true if a sequence is stored for the chromosome.
func (c *Chromosome) HasSequence() bool {
	return c.Sequence != ""
}

// SetSequence stores seq and refreshes the checksum.
func (c *Chromosome) SetSequence(seq string) {
	c.Sequence = seq
	c.Checksum = SequenceChecksum(seq)
}

// Clone returns a copy of the chromosome.
func (c *Chromosome) Clone() *Chromosome {
	cp := *c
	return &cp
}

// SequenceChecksum returns the hex xxhash64 digest of seq, or "" for an empty sequence.
// The digest is case-sensitive: it identifies the stored text, not the molecule.
func SequenceChecksum(seq string) string {
	if seq == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(seq))
}

// ValidateName checks a chromosome name, gene symbol or function code.
func ValidateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(value) > MaxNameLength {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrInvalidInput, field, MaxNameLength)
	}
	return nil
}

// ChromosomeUpdate holds optional chromosome fields for a partial update.
// Nil fields are left unchanged.
type ChromosomeUpdate struct {
	Name   *string
	Length *int64
}

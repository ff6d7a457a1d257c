package genome

import (
	"fmt"
	"strings"
	"time"
)

// Category is a Gene Ontology aspect.
type Category string

const (
	CategoryBiologicalProcess Category = "BP"
	CategoryMolecularFunction Category = "MF"
	CategoryCellularComponent Category = "CC"
)

// ParseCategory parses BP, MF or CC.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryBiologicalProcess, CategoryMolecularFunction, CategoryCellularComponent:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: category must be BP, MF or CC, got %q", ErrInvalidInput, s)
}

// Function is an ontology term that genes can be associated with.
type Function struct {
	ID          int64
	Code        string // e.g. GO:0003924
	Name        string
	Category    Category
	Description string
	CreatedAt   time.Time
}

// Association links a gene to a function.
type Association struct {
	GeneID     int64
	FunctionID int64
	Evidence   string // evidence code, e.g. IDA
	CreatedAt  time.Time
}

// MaxFunctionNameLength bounds function names.
const MaxFunctionNameLength = 255

// Validate checks a new function's fields.
func (f *Function) Validate() error {
	if err := ValidateName("code", f.Code); err != nil {
		return err
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(f.Name) > MaxFunctionNameLength {
		return fmt.Errorf("%w: name must not exceed %d characters", ErrInvalidInput, MaxFunctionNameLength)
	}
	_, err := ParseCategory(string(f.Category))
	return err
}

// ValidateEvidence checks an optional association evidence code.
func ValidateEvidence(evidence string) error {
	if len(evidence) > MaxNameLength {
		return fmt.Errorf("%w: evidence must not exceed %d characters", ErrInvalidInput, MaxNameLength)
	}
	return nil
}

// FunctionUpdate holds optional function fields for a partial update.
// Nil fields are left unchanged.
type FunctionUpdate struct {
	Code        *string
	Name        *string
	Category    *Category
	Description *string
}

// Apply copies the supplied fields onto f.
func (u FunctionUpdate) Apply(f *Function) {
	if u.Code != nil {
		f.Code = *u.Code
	}
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Category != nil {
		f.Category = *u.Category
	}
	if u.Description != nil {
		f.Description = *u.Description
	}
}

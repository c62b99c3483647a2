package model

import (
	"errors"
	"fmt"
)

// SchemaError: a required column is missing from an upload. Fatal for
// the index build; nothing else runs until the user fixes the file.
type SchemaError struct {
	Source string // "sales" or "stock"
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s file: required column %q not found", e.Source, e.Column)
}

// AmbiguousError: the tokenizer found more numbers than the policy can
// assign. Routes the line to the confirmation protocol; other lines in
// the same order are unaffected.
type AmbiguousError struct {
	Ambiguity Ambiguity
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous quantity/price: %d numeric tokens in %q",
		len(e.Ambiguity.Tokens), e.Ambiguity.Raw)
}

// Per-line, non-fatal conditions.
var (
	ErrNoCandidateFound = errors.New("no catalog entry cleared the match threshold")
	ErrNoWarehouseStock = errors.New("no warehouse holds stock for this item")
	ErrNoPriceFound     = errors.New("no price found in sales history")
)

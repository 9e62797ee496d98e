package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is matched by every SchemaError
	ErrMissingColumn = errors.New("required column missing")
	// ErrEmptyInput is matched by every EmptyInputError
	ErrEmptyInput = errors.New("input has no lines")
)

// SchemaError reports a required column absent from an input table
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("missing required column %q", e.Column)
	}
	return fmt.Sprintf("%s: missing required column %q", e.Source, e.Column)
}

func (e *SchemaError) Is(target error) bool { return target == ErrMissingColumn }

// EmptyInputError reports an input without a single data row
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	if e.Source == "" {
		return "input contains no lines"
	}
	return fmt.Sprintf("%s: input contains no lines", e.Source)
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// NumericCoercionWarning records a quantity cell that was not numeric and was read as 0
type NumericCoercionWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (w NumericCoercionWarning) String() string {
	return fmt.Sprintf("row %d: column %q value %q is not numeric, using 0", w.Row, w.Column, w.Value)
}

// GroupError reports an item group that could not be processed.
// Its lines are left Undecided and carry the error note.
type GroupError struct {
	Item ItemKey
	Err  error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("item %s: %v", e.Item, e.Err)
}

func (e *GroupError) Unwrap() error { return e.Err }

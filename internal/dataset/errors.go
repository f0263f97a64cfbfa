package dataset

import (
	"fmt"
	"strings"
)

// LoadError reports an input that could not be read or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DataIntegrityError reports area names that occur more than once in a table
// when strict uniqueness is requested.
type DataIntegrityError struct {
	Table      string
	Duplicates []string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("duplicate names in %s table: %s", e.Table, strings.Join(e.Duplicates, ", "))
}

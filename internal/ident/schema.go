package ident

import (
	"errors"
	"fmt"
)

// DocumentField locates one document kind in a row.
//
// Label tags the bucket prefix when this kind wins without being the
// top-priority kind, so equal raw values of different kinds never share a key.
type DocumentField struct {
	Kind  string `yaml:"kind"`
	Index int    `yaml:"index"`
	Label string `yaml:"label"`
}

// Schema maps semantic fields to column positions.
//
// Documents is ordered by priority, most discriminating first. A Schema is
// fixed at startup and must not be mutated while a Builder uses it.
type Schema struct {
	Name      int             `yaml:"name"`
	Documents []DocumentField `yaml:"documents"`
}

// DefaultSchema returns the production column layout:
// CNPJ > CNO > CAEPF > CPF, name at column 1.
func DefaultSchema() Schema {
	return Schema{
		Name: 1,
		Documents: []DocumentField{
			// The full CNPJ tells a branch (0002) from its head office (0001).
			{Kind: "CNPJ", Index: 38},
			{Kind: "CNO", Index: 113, Label: "CNO"},
			{Kind: "CAEPF", Index: 110, Label: "CAEPF"},
			{Kind: "CPF", Index: 109, Label: "CPF"},
		},
	}
}

// Validate reports every structural problem in the schema.
func (s Schema) Validate() error {
	var errs []error

	if s.Name < 0 {
		errs = append(errs, fmt.Errorf("name index %d is negative", s.Name))
	}
	if len(s.Documents) == 0 {
		errs = append(errs, errors.New("at least one document field is required"))
	}

	seen := map[int]string{s.Name: "name"}
	kinds := make(map[string]bool, len(s.Documents))
	for i, doc := range s.Documents {
		if doc.Kind == "" {
			errs = append(errs, fmt.Errorf("documents[%d]: kind is required", i))
		} else if kinds[doc.Kind] {
			errs = append(errs, fmt.Errorf("documents[%d]: duplicate kind %q", i, doc.Kind))
		}
		kinds[doc.Kind] = true

		if doc.Index < 0 {
			errs = append(errs, fmt.Errorf("documents[%d] (%s): index %d is negative", i, doc.Kind, doc.Index))
		} else if other, ok := seen[doc.Index]; ok {
			errs = append(errs, fmt.Errorf("documents[%d] (%s): index %d already used by %s", i, doc.Kind, doc.Index, other))
		} else {
			seen[doc.Index] = doc.Kind
		}

		if i > 0 && doc.Label == "" {
			errs = append(errs, fmt.Errorf("documents[%d] (%s): label is required below the top priority", i, doc.Kind))
		}
	}

	return errors.Join(errs...)
}

package ident

import "strings"

const (
	// NoNameLabel stands in for the name when the row is too short to hold one.
	NoNameLabel = "SemNome"

	// NoDocumentPrefix is used when every document field is empty.
	NoDocumentPrefix = "SEM_DOC"

	// DefaultMaxKeyLength keeps keys well under common path limits.
	DefaultMaxKeyLength = 100
)

// Builder derives bucket keys for rows under a fixed schema.
//
// Builder is immutable and safe for concurrent use.
type Builder struct {
	schema Schema
	maxLen int
}

// NewBuilder validates schema and returns a Builder. A maxLen <= 0 selects
// DefaultMaxKeyLength.
func NewBuilder(schema Schema, maxLen int) (*Builder, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxKeyLength
	}
	docs := make([]DocumentField, len(schema.Documents))
	copy(docs, schema.Documents)
	schema.Documents = docs
	return &Builder{schema: schema, maxLen: maxLen}, nil
}

// Schema returns a copy of the builder's schema.
func (b *Builder) Schema() Schema {
	s := b.schema
	s.Documents = append([]DocumentField(nil), b.schema.Documents...)
	return s
}

// Key returns the bucket key for row. It never fails: short rows fall back
// to NoNameLabel and empty documents.
func (b *Builder) Key(row []any) string {
	name := NoNameLabel
	if b.schema.Name < len(row) {
		name = Sanitize(row[b.schema.Name])
	}

	key := b.Prefix(row) + "_" + strings.ReplaceAll(name, " ", "_")
	return truncateRunes(key, b.maxLen)
}

// Prefix returns the document part of the key for row.
func (b *Builder) Prefix(row []any) string {
	for i, doc := range b.schema.Documents {
		if doc.Index >= len(row) {
			continue
		}
		v := Sanitize(row[doc.Index])
		if v == "" {
			continue
		}
		if i == 0 {
			return v
		}
		return doc.Label + "_" + v
	}
	return NoDocumentPrefix
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

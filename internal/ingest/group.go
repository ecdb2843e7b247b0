package ingest

// KeyFunc derives the bucket key of a row.
type KeyFunc func(row []any) string

// Groups is an ordered mapping from bucket key to rows.
type Groups struct {
	keys []string
	rows map[string][][]any
}

// Group partitions rows by key. Keys keep the order in which their first
// row appears and each bucket keeps submission order. Rows are shared, not
// copied. An empty submission returns ErrEmptySubmission.
func Group(rows [][]any, key KeyFunc) (*Groups, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySubmission
	}

	g := &Groups{rows: make(map[string][][]any)}
	for _, row := range rows {
		k := key(row)
		if _, ok := g.rows[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.rows[k] = append(g.rows[k], row)
	}
	return g, nil
}

// Keys returns bucket keys in first-seen order.
func (g *Groups) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Rows returns the rows of bucket key in submission order.
func (g *Groups) Rows(key string) [][]any {
	return g.rows[key]
}

// Len returns the number of buckets.
func (g *Groups) Len() int {
	return len(g.keys)
}

// RowCount returns the number of rows across all buckets.
func (g *Groups) RowCount() int {
	n := 0
	for _, rows := range g.rows {
		n += len(rows)
	}
	return n
}

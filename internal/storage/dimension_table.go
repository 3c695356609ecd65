package storage

import "fmt"

// dimensionTable names the per-dimension embedding table for a vector of
// length d, following embedding_tables.py's DIMENSION_TABLE_MAP /
// resolve_dimension_table. The map is built once from the set of
// configured model dimensions (Design Notes §9: "a static table keyed on
// the set of configured models"), not hardcoded to a fixed pair, since the
// set of dimensions in play is a configuration fact.
func (s *Store) dimensionTable(d int) (string, error) {
	table, ok := s.dimToTable[d]
	if !ok {
		return "", fmt.Errorf("%w: no embedding table configured for dimension %d", errUnsupportedDimension, d)
	}
	return table, nil
}

func buildDimensionTableMap(dims map[int]bool) map[int]string {
	out := make(map[int]string, len(dims))
	for d := range dims {
		out[d] = fmt.Sprintf("chunk_embeddings_%dd", d)
	}
	return out
}

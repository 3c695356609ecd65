package storage

import (
	"fmt"
	"strings"

	"memnon/internal/domain"
)

// filterClause builds a bound-parameter WHERE fragment from Filters,
// starting argument numbering at startArg (pgx placeholders are
// positional across the whole statement). It never concatenates a filter
// value into the SQL text — every value is appended to args and
// substituted via $N, correcting db_access.py's
// f"cm.season = {filters['season']}" string-interpolation pattern.
func filterClause(f domain.Filters, startArg int) (clause string, args []any) {
	var parts []string
	n := startArg

	if f.Season != nil {
		parts = append(parts, fmt.Sprintf("cm.season = $%d", n))
		args = append(args, *f.Season)
		n++
	}
	if f.Episode != nil {
		parts = append(parts, fmt.Sprintf("cm.episode = $%d", n))
		args = append(args, *f.Episode)
		n++
	}
	if f.WorldLayer != nil {
		parts = append(parts, fmt.Sprintf("cm.world_layer = $%d", n))
		args = append(args, *f.WorldLayer)
		n++
	}

	if len(parts) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(parts, " AND "), args
}

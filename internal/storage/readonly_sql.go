package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// forbiddenKeywords reject any statement that isn't a pure read, matching
// memnon.py's execute_readonly_sql.
var forbiddenKeywords = []string{
	"update", "insert", "delete", "alter", "create", "drop",
	"grant", "revoke", "truncate", "vacuum", "copy",
}

// forbiddenTablePrefixes block migration/system/embedding tables from the
// ad-hoc readonly executor, even though the core's own typed methods read
// chunk_embeddings_* directly — this executor is a different, external-
// tool-facing interface with a narrower whitelist.
var forbiddenTablePrefixes = []string{
	"alembic_", "pg_", "information_schema", "chunk_embeddings_",
}

var tableRefPattern = regexp.MustCompile(`(?i)\b(?:from|join)\s+([a-zA-Z0-9_."]+)`)
var limitPattern = regexp.MustCompile(`(?i)\blimit\s+\d+`)

const maxFieldLen = 2000

// ReadonlySQLResult is the result shape of ExecuteReadonlySQL. Error is
// set, and the other fields other than SQL are empty, when validation
// rejected the statement.
type ReadonlySQLResult struct {
	Columns  []string
	Rows     [][]any
	RowCount int
	SQL      string
	Error    string
}

// ExecuteReadonlySQL runs a whitelisted single-statement SELECT: rejects
// any forbidden keyword or semicolon, rejects references to blacklisted
// table prefixes, injects a LIMIT if absent, sets a per-statement timeout,
// and truncates text fields over 2000 characters. It returns an error
// result (Error set, nil Go error) rather than a Go error on validation
// failure, because this is the one interface external tools consume
// directly (spec.md §7); execution failures are returned as Go errors.
func (s *Store) ExecuteReadonlySQL(ctx context.Context, sql string, maxRows int, timeout time.Duration) (*ReadonlySQLResult, error) {
	trimmed := strings.TrimSpace(sql)
	trimmed = strings.TrimSuffix(trimmed, ";")

	if strings.Contains(trimmed, ";") {
		return &ReadonlySQLResult{Error: "only a single statement is permitted", SQL: trimmed}, nil
	}
	if !strings.HasPrefix(strings.ToLower(trimmed), "select") {
		return &ReadonlySQLResult{Error: "only SELECT statements are permitted", SQL: trimmed}, nil
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range forbiddenKeywords {
		if containsWord(lower, kw) {
			return &ReadonlySQLResult{Error: fmt.Sprintf("forbidden keyword %q", kw), SQL: trimmed}, nil
		}
	}

	for _, match := range tableRefPattern.FindAllStringSubmatch(trimmed, -1) {
		table := strings.ToLower(strings.Trim(match[1], `"`))
		for _, prefix := range forbiddenTablePrefixes {
			if strings.HasPrefix(table, prefix) {
				return &ReadonlySQLResult{Error: fmt.Sprintf("forbidden table reference %q", table), SQL: trimmed}, nil
			}
		}
	}

	if maxRows <= 0 {
		maxRows = s.cfg.ReadonlySQLMaxRows
	}
	if !limitPattern.MatchString(trimmed) {
		trimmed = fmt.Sprintf("%s LIMIT %d", trimmed, maxRows)
	}

	if timeout <= 0 {
		timeout = time.Duration(s.cfg.ReadonlySQLTimeoutMS) * time.Millisecond
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin readonly transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", timeout.Milliseconds())); err != nil {
		return nil, fmt.Errorf("set statement timeout: %w", err)
	}

	rows, err := tx.Query(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f.Name)
	}

	var out [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if str, ok := v.(string); ok && len(str) > maxFieldLen {
				values[i] = str[:maxFieldLen]
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &ReadonlySQLResult{
		Columns:  columns,
		Rows:     out,
		RowCount: len(out),
		SQL:      trimmed,
	}, nil
}

func containsWord(haystack, word string) bool {
	pattern := `\b` + regexp.QuoteMeta(word) + `\b`
	matched, _ := regexp.MatchString(pattern, haystack)
	return matched
}

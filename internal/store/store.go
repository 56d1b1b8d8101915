// Package store implements the quote, client and product repositories on
// SQLite. Line items and nested value objects are kept in JSON columns.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Fixed-width so that lexical order on the column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// base holds what every repository needs.
type base struct {
	db *sql.DB
}

// builder returns a squirrel builder with SQLite placeholders.
func (b base) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func (b base) exec(ctx context.Context, q squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return b.db.ExecContext(ctx, query, args...)
}

// get scans the single row selected by q into dst. It returns false when
// no row matches.
func (b base) get(ctx context.Context, dst any, q squirrel.Sqlizer) (bool, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	if err := sqlscan.Get(ctx, b.db, dst, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b base) selectAll(ctx context.Context, dst any, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlscan.Select(ctx, b.db, dst, query, args...)
}

// FormatTime renders t in the column format used for timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern built with like.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func like(column, pattern string) squirrel.Sqlizer {
	return squirrel.Expr(column+` LIKE ? ESCAPE '\'`, pattern)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

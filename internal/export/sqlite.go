package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mcncl/jsonshaper/internal/flatten"
)

// WriteSQLite stores rows in table inside the SQLite database at dsn. The
// table is recreated with one TEXT column per distinct header and all rows
// are inserted in a single transaction. Null cells are stored as NULL.
func WriteSQLite(ctx context.Context, dsn, table string, headers []string, rows []flatten.Row) (err error) {
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("table name is empty")
	}
	columns := distinct(headers)
	if len(columns) == 0 {
		return fmt.Errorf("no columns to write")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+sqlIdent(table)); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	if _, err = tx.ExecContext(ctx, buildCreateTableSQL(table, columns)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertSQL(table, columns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(columns))
	for i, row := range rows {
		for j, c := range columns {
			v, _ := row.Get(c)
			if v == nil {
				args[j] = nil
				continue
			}
			args[j] = flatten.ScalarString(v)
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sqlIdent(id string) string {
	// SQLite supports "quoted identifiers"
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func buildCreateTableSQL(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = sqlIdent(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", sqlIdent(table), strings.Join(defs, ", "))
}

func buildInsertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = sqlIdent(c)
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(columns)), ",")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", sqlIdent(table), strings.Join(cols, ", "), placeholders)
}

// distinct drops repeated names, keeping first positions. SQLite column
// names compare case-insensitively.
func distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}

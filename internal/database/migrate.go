package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql/mysql/*.sql sql/postgres/*.sql
var schemaFS embed.FS

// Migrate applies the embedded schema files for d in lexical order. Every
// statement is idempotent (CREATE ... IF NOT EXISTS), so Migrate can run
// on every start.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	stmts, err := loadStatements(schemaFS, d)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// loadStatements reads sql/<dialect>/*.sql and splits each file on ';'.
func loadStatements(fsys fs.FS, d Dialect) ([]string, error) {
	dir := "sql/" + string(d)
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var stmts []string
	for _, name := range names {
		body, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for _, part := range strings.Split(string(body), ";") {
			if s := strings.TrimSpace(part); s != "" {
				stmts = append(stmts, s)
			}
		}
	}
	return stmts, nil
}

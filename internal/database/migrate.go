package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"strings"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the schema for the dialect.  Every statement is
// idempotent (CREATE ... IF NOT EXISTS) so it is safe to run on each boot.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	raw, err := migrations.ReadFile("migrations/" + d.Name() + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	stmts := splitStatements(string(raw))
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	log.Printf("schema applied (%s, %d statements)", d.Name(), len(stmts))
	return nil
}

func splitStatements(src string) []string {
	var out []string
	for _, part := range strings.Split(src, ";") {
		lines := []string{}
		for _, l := range strings.Split(part, "\n") {
			if t := strings.TrimSpace(l); t != "" && !strings.HasPrefix(t, "--") {
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}
	return out
}

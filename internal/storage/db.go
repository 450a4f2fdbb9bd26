// Package storage exports a run's symbols, dependency edges, documentation
// and issues to a SQLite database for inspection with ordinary SQL tooling.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/morozRed/adaptivedoc/internal/docs"
	"github.com/morozRed/adaptivedoc/internal/pipeline"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Export replaces the database content with analysis. Documentation columns
// are filled from store when it is non-nil. Everything is written in one
// transaction.
func (db *DB) Export(ctx context.Context, analysis *pipeline.Analysis, store *docs.Store) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM edges", "DELETE FROM issues", "DELETE FROM symbols"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
	}

	insertSymbol, err := tx.PrepareContext(ctx,
		`INSERT INTO symbols (qualified_name, name, kind, module, file, line, signature, position, doc, doc_source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertSymbol.Close()

	byName := make(map[string]int, len(analysis.Symbols))
	for i, sym := range analysis.Symbols {
		byName[sym.QualifiedName] = i
	}

	ids := make(map[string]int64, len(analysis.Order.Names))
	for position, name := range analysis.Order.Names {
		idx, ok := byName[name]
		if !ok {
			continue
		}
		sym := analysis.Symbols[idx]

		var doc, source sql.NullString
		if store != nil {
			if entry, ok := store.Entry(name); ok {
				doc = sql.NullString{String: entry.Text, Valid: true}
				source = sql.NullString{String: string(entry.Source), Valid: true}
			}
		}

		result, err := insertSymbol.ExecContext(ctx,
			sym.QualifiedName, sym.Name, sym.Kind.String(), sym.Module, sym.File, sym.Line, sym.Signature, position, doc, source)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		ids[name] = id
	}

	for _, edge := range analysis.Graph.Edges() {
		from, okFrom := ids[edge.From]
		to, okTo := ids[edge.To]
		if !okFrom || !okTo {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO edges (from_id, to_id) VALUES (?, ?)`, from, to); err != nil {
			return fmt.Errorf("failed to insert edge %s -> %s: %w", edge.From, edge.To, err)
		}
	}

	for _, issue := range analysis.Issues {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO issues (kind, file, symbol, severity, message) VALUES (?, ?, ?, ?, ?)`,
			string(issue.Kind), issue.File, issue.Symbol, issue.Severity, issue.Message,
		); err != nil {
			return fmt.Errorf("failed to insert issue: %w", err)
		}
	}

	return tx.Commit()
}

package storage

import (
	"context"
	"database/sql"
)

// Counts returns the number of stored symbols, edges and issues.
func (db *DB) Counts(ctx context.Context) (symbols, edges, issues int, err error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM symbols), (SELECT COUNT(*) FROM edges), (SELECT COUNT(*) FROM issues)`)
	err = row.Scan(&symbols, &edges, &issues)
	return symbols, edges, issues, err
}

// ExecutionOrder returns stored qualified names by scheduled position.
func (db *DB) ExecutionOrder(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT qualified_name FROM symbols ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// Dependencies returns the direct dependencies of name, sorted.
func (db *DB) Dependencies(ctx context.Context, name string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT dep.qualified_name
		 FROM edges e
		 JOIN symbols dep ON dep.id = e.from_id
		 JOIN symbols s ON s.id = e.to_id
		 WHERE s.qualified_name = ?
		 ORDER BY dep.qualified_name`, name)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// Doc returns the stored documentation of name and where it came from.
func (db *DB) Doc(ctx context.Context, name string) (text, source string, ok bool, err error) {
	var doc, src sql.NullString
	err = db.conn.QueryRowContext(ctx,
		`SELECT doc, doc_source FROM symbols WHERE qualified_name = ?`, name).Scan(&doc, &src)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	return doc.String, src.String, doc.Valid, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}

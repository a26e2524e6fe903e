package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// ReadSQL materializes the result of query as a table. Every value is scanned
// as text so kinds are declared the same way as for files.
func ReadSQL(ctx context.Context, db *sql.DB, query string, conv *converter.TypeConverter) (*model.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	table := &model.Table{Columns: make([]model.Column, len(names))}
	for i, name := range names {
		table.Columns[i] = model.Column{Name: name}
	}

	dest := make([]interface{}, len(names))
	for rows.Next() {
		row := make([]sql.NullString, len(names))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(table.Rows)+1, err)
		}
		for i := range row {
			if row[i].Valid && conv.IsNullToken(row[i].String) {
				row[i] = model.Null()
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	conv.DeclareKinds(table)
	return table, nil
}

// Package source reads and writes the PMFS tables, from delimited files or a
// SQL warehouse, and declares each column's kind once at read time.
package source

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// Reader produces a table
type Reader interface {
	Read(ctx context.Context) (*model.Table, error)
}

// FileReader reads a delimited file
type FileReader struct {
	Path    string
	Options CSVOptions
	conv    *converter.TypeConverter
	logger  *zap.Logger
}

// NewFileReader creates a reader for a delimited file
func NewFileReader(path string, opts CSVOptions, conv *converter.TypeConverter, logger *zap.Logger) *FileReader {
	return &FileReader{Path: path, Options: opts, conv: conv, logger: logger}
}

// Read loads the whole file into memory
func (r *FileReader) Read(_ context.Context) (*model.Table, error) {
	table, err := ReadCSVFile(r.Path, r.Options, r.conv)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Loaded table from file",
		zap.String("path", r.Path),
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumColumns()))
	return table, nil
}

// QueryReader reads the result of a query
type QueryReader struct {
	db     *sql.DB
	query  string
	conv   *converter.TypeConverter
	logger *zap.Logger
}

// NewQueryReader creates a reader for a SQL query
func NewQueryReader(db *sql.DB, query string, conv *converter.TypeConverter, logger *zap.Logger) *QueryReader {
	return &QueryReader{db: db, query: query, conv: conv, logger: logger}
}

// Read runs the query and loads every row into memory
func (r *QueryReader) Read(ctx context.Context) (*model.Table, error) {
	table, err := ReadSQL(ctx, r.db, r.query, r.conv)
	if err != nil {
		return nil, model.NewPipelineError(model.KindInputRead, err)
	}

	r.logger.Info("Loaded table from query",
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumColumns()))
	return table, nil
}

// TableQuery builds the full-scan query for a warehouse table
func TableQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s", table)
}

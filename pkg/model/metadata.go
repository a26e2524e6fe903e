package model

import "database/sql"

// Kind is the declared type of a column, derived once when a table is read
type Kind int

const (
	// KindText holds free text, dates and identifiers
	KindText Kind = iota
	// KindNumeric holds values that all parse as numbers
	KindNumeric
)

// String returns a string representation of the column kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Column represents metadata about a table column
type Column struct {
	Name string // Header name as found in the source
	Kind Kind   // Declared type, carried through every stage
}

// Table is an in-memory dataset: ordered columns and rows of nullable text cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []Column
	Rows    [][]sql.NullString
}

// Null returns a null cell
func Null() sql.NullString {
	return sql.NullString{}
}

// Text returns a non-null cell holding s
func Text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnNames returns the header names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of a column by exact name
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Columns {
		if col.Name == name {
			return i, true
		}
	}
	return -1, false
}

// NullCount returns the number of null cells in column idx
func (t *Table) NullCount(idx int) int {
	count := 0
	for _, row := range t.Rows {
		if !row[idx].Valid {
			count++
		}
	}
	return count
}

// NullCounts returns the null count of every column, in column order
func (t *Table) NullCounts() []int {
	counts := make([]int, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			if !cell.Valid {
				counts[i]++
			}
		}
	}
	return counts
}

// RowNullCount returns the number of null cells in row r
func (t *Table) RowNullCount(r int) int {
	count := 0
	for _, cell := range t.Rows[r] {
		if !cell.Valid {
			count++
		}
	}
	return count
}

// TotalNulls returns the number of null cells in the whole table
func (t *Table) TotalNulls() int {
	total := 0
	for _, n := range t.NullCounts() {
		total += n
	}
	return total
}

// Clone returns a deep copy so stages never alias the caller's rows
func (t *Table) Clone() *Table {
	clone := &Table{
		Columns: make([]Column, len(t.Columns)),
		Rows:    make([][]sql.NullString, len(t.Rows)),
	}
	copy(clone.Columns, t.Columns)
	for i, row := range t.Rows {
		clone.Rows[i] = make([]sql.NullString, len(row))
		copy(clone.Rows[i], row)
	}
	return clone
}

// DropColumns returns a table without the columns whose positions are in drop
func (t *Table) DropColumns(drop map[int]bool) *Table {
	keep := make([]int, 0, len(t.Columns))
	for i := range t.Columns {
		if !drop[i] {
			keep = append(keep, i)
		}
	}

	out := &Table{
		Columns: make([]Column, 0, len(keep)),
		Rows:    make([][]sql.NullString, len(t.Rows)),
	}
	for _, i := range keep {
		out.Columns = append(out.Columns, t.Columns[i])
	}
	for r, row := range t.Rows {
		newRow := make([]sql.NullString, 0, len(keep))
		for _, i := range keep {
			newRow = append(newRow, row[i])
		}
		out.Rows[r] = newRow
	}
	return out
}

// FilterRows returns a table holding only the rows for which keep returns true
func (t *Table) FilterRows(keep func(r int) bool) *Table {
	out := &Table{
		Columns: t.Columns,
		Rows:    make([][]sql.NullString, 0, len(t.Rows)),
	}
	for r, row := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

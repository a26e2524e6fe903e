package converter

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// Subtype refines a column kind for diagnostics only; cleaning uses model.Kind
type Subtype string

const (
	SubtypeInteger Subtype = "numeric/integer"
	SubtypeDecimal Subtype = "numeric/decimal"
	SubtypeDate    Subtype = "text/date"
	SubtypeText    Subtype = "text"
	SubtypeEmpty   Subtype = "text/empty"
)

// ParseNumber parses a cell as a finite float. Surrounding whitespace is ignored.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// InferKind declares a column numeric when it has at least one value and every
// non-null value parses as a number. An all-null column is text.
func InferKind(cells []sql.NullString) model.Kind {
	seen := false
	for _, cell := range cells {
		if !cell.Valid {
			continue
		}
		if _, ok := ParseNumber(cell.String); !ok {
			return model.KindText
		}
		seen = true
	}
	if !seen {
		return model.KindText
	}
	return model.KindNumeric
}

// DetectSubtype refines the declared kind of a column
func DetectSubtype(kind model.Kind, cells []sql.NullString) Subtype {
	values := 0
	integral := true
	dates := true
	for _, cell := range cells {
		if !cell.Valid {
			continue
		}
		values++
		switch kind {
		case model.KindNumeric:
			if f, ok := ParseNumber(cell.String); ok && f != math.Trunc(f) {
				integral = false
			}
		default:
			if dates && DetectTimeFormat(strings.TrimSpace(cell.String)) == "" {
				dates = false
			}
		}
	}

	switch {
	case values == 0:
		return SubtypeEmpty
	case kind == model.KindNumeric && integral:
		return SubtypeInteger
	case kind == model.KindNumeric:
		return SubtypeDecimal
	case dates:
		return SubtypeDate
	default:
		return SubtypeText
	}
}

// DetectTimeFormat analyzes a value to determine its date/timestamp layout
func DetectTimeFormat(value string) string {
	// Common formats to check, Brazilian layouts first
	formats := []string{
		"02/01/2006",                // dd/mm/yyyy
		"02/01/2006 15:04:05",       // dd/mm/yyyy with time
		"02/01/2006 15:04",          // dd/mm/yyyy without seconds
		"2006-01-02",                // Date only
		"2006-01-02 15:04:05",       // SQL timestamp
		"2006-01-02T15:04:05Z07:00", // ISO8601 with timezone
		"2006-01-02T15:04:05",       // ISO8601 without timezone
	}

	for _, format := range formats {
		if _, err := time.Parse(format, value); err == nil {
			return format
		}
	}

	return ""
}

// NumericValues returns the parseable non-null values of column idx in row order
func NumericValues(t *model.Table, idx int) []float64 {
	values := make([]float64, 0, t.NumRows())
	for _, row := range t.Rows {
		if !row[idx].Valid {
			continue
		}
		if f, ok := ParseNumber(row[idx].String); ok {
			values = append(values, f)
		}
	}
	return values
}

// columnCells extracts column idx from every row
func columnCells(t *model.Table, idx int) []sql.NullString {
	cells := make([]sql.NullString, len(t.Rows))
	for r, row := range t.Rows {
		cells[r] = row[idx]
	}
	return cells
}

package converter

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// DocumentValue converts a cell to a JSON-ready value for its column kind:
// nil for null, float64 for numeric columns, the raw text otherwise
func (c *TypeConverter) DocumentValue(cell sql.NullString, kind model.Kind) interface{} {
	// Handle NULL values
	if !cell.Valid {
		return nil
	}

	if kind == model.KindNumeric {
		if f, ok := ParseNumber(cell.String); ok {
			return f
		}
		// Declared numeric but unparseable only after a placeholder fill
		return cell.String
	}

	return cell.String
}

// KeyValue returns the document store key form of a cell
func KeyValue(cell sql.NullString) string {
	if !cell.Valid {
		return ""
	}
	return strings.TrimSpace(cell.String)
}

// FormatNumber renders an imputed number with the shortest exact representation
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

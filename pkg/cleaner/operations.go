package cleaner

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// Stage names as they appear in the report
const (
	StageColumnPruning = "Remoção de colunas com >70% nulos"
	StageIdentifiers   = "Tratamento CPF/CNPJ"
	StageRowPruning    = "Remoção de linhas com muitos nulos"
	StageImputation    = "Preenchimento de valores nulos"
	StageEmptyRowSweep = "Remoção de linhas completamente vazias"
)

// Pruning thresholds
const (
	MaxColumnNullPercent = 70.0
	MaxRowNullFraction   = 0.5
)

// IdentifierClass is the result of classifying a holder identifier
type IdentifierClass int

const (
	IdentifierInvalid IdentifierClass = iota
	IdentifierCPF
	IdentifierCNPJ
)

// String returns the label used in logs
func (c IdentifierClass) String() string {
	switch c {
	case IdentifierCPF:
		return "CPF"
	case IdentifierCNPJ:
		return "CNPJ"
	default:
		return "invalid"
	}
}

var identifierPunctuation = strings.NewReplacer(".", "", "-", "", "/", "", " ", "")

// ClassifyIdentifier strips punctuation and classifies by digit count:
// 11 digits is a CPF, 14 a CNPJ, anything else (null included) is invalid
func ClassifyIdentifier(cell sql.NullString) IdentifierClass {
	if !cell.Valid {
		return IdentifierInvalid
	}

	digits := identifierPunctuation.Replace(cell.String)
	if digits == "" {
		return IdentifierInvalid
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return IdentifierInvalid
		}
	}

	switch len(digits) {
	case 11:
		return IdentifierCPF
	case 14:
		return IdentifierCNPJ
	default:
		return IdentifierInvalid
	}
}

// nullPercent returns the share of null cells in a column, 0 for an empty table
func nullPercent(t *model.Table, idx int) float64 {
	if t.NumRows() == 0 {
		return 0
	}
	return float64(t.NullCount(idx)) / float64(t.NumRows()) * 100
}

// pruneColumns drops every column whose null percentage strictly exceeds maxPercent
func pruneColumns(t *model.Table, maxPercent float64) (*model.Table, model.StageResult) {
	stage := model.StageResult{Name: StageColumnPruning}

	drop := make(map[int]bool)
	var dropped []string
	for i, col := range t.Columns {
		pct := nullPercent(t, i)
		if pct > maxPercent {
			drop[i] = true
			dropped = append(dropped, col.Name)
			stage.Detail(fmt.Sprintf("%s: %.1f%% nulos", col.Name, pct))
		}
	}

	out := t.DropColumns(drop)
	stage.Add("colunas_removidas", len(dropped))
	stage.Add("colunas_restantes", out.NumColumns())
	return out, stage
}

// reclassifyIdentifiers nulls every CPF in the holder identifier column
func reclassifyIdentifiers(t *model.Table) (*model.Table, model.StageResult, error) {
	stage := model.StageResult{Name: StageIdentifiers}

	idx, ok := t.ColumnIndex(model.ColCPFCNPJ)
	if !ok {
		return nil, stage, model.MissingColumn(StageIdentifiers, model.ColCPFCNPJ)
	}

	out := t.Clone()
	var cpfs, cnpjs, invalid int
	for r := range out.Rows {
		switch ClassifyIdentifier(out.Rows[r][idx]) {
		case IdentifierCPF:
			cpfs++
			out.Rows[r][idx] = model.Null()
		case IdentifierCNPJ:
			cnpjs++
		default:
			invalid++
		}
	}

	stage.Add("cpfs_encontrados", cpfs)
	stage.Add("cnpjs_mantidos", cnpjs)
	stage.Add("nulos_ou_invalidos", invalid)
	stage.Add("cpfs_convertidos_null", cpfs)
	return out, stage, nil
}

// pruneRows drops rows with more than fraction × current column count nulls
func pruneRows(t *model.Table, fraction float64) (*model.Table, model.StageResult) {
	stage := model.StageResult{Name: StageRowPruning}

	threshold := float64(t.NumColumns()) * fraction
	out := t.FilterRows(func(r int) bool {
		return float64(t.RowNullCount(r)) <= threshold
	})

	stage.Add("linhas_removidas", t.NumRows()-out.NumRows())
	stage.Add("linhas_restantes", out.NumRows())
	stage.Add("threshold_nulos", threshold)
	return out, stage
}

// imputer fills null cells column by column
type imputer struct {
	placeholder string
	logger      *zap.Logger
}

// imputeNulls fills every null cell: median for numeric columns, mode for text,
// the placeholder when a column has nothing to derive a value from
func (im *imputer) imputeNulls(t *model.Table) (*model.Table, model.StageResult) {
	stage := model.StageResult{Name: StageImputation}
	out := t.Clone()

	var numeric, text int
	for _, col := range out.Columns {
		if col.Kind == model.KindNumeric {
			numeric++
		} else {
			text++
		}
	}

	before := out.TotalNulls()
	for i := range out.Columns {
		nulls := out.NullCount(i)
		if nulls == 0 {
			continue
		}
		strategy := im.fillColumn(out, i)
		stage.Detail(fmt.Sprintf("%s: %d nulos → %s", out.Columns[i].Name, nulls, strategy))
	}

	// Second pass for anything the first one left behind
	if remaining := out.TotalNulls(); remaining > 0 {
		im.logger.Warn("Nulls remain after imputation, applying final fill",
			zap.Int("remaining", remaining))
		for i := range out.Columns {
			if out.NullCount(i) > 0 {
				im.fillColumn(out, i)
			}
		}
	}

	after := out.TotalNulls()
	stage.Add("colunas_numericas", numeric)
	stage.Add("colunas_texto", text)
	stage.Add("nulos_antes", before)
	stage.Add("nulos_depois", after)
	stage.Add("nulos_preenchidos", before-after)
	return out, stage
}

// fillColumn replaces the nulls of column idx in place and describes the strategy used
func (im *imputer) fillColumn(t *model.Table, idx int) string {
	col := &t.Columns[idx]

	var fill, strategy string
	switch col.Kind {
	case model.KindNumeric:
		values := converter.NumericValues(t, idx)
		if len(values) == 0 {
			err := model.NewPipelineError(model.KindEmptyColumn, nil).
				WithStage(StageImputation).
				WithColumn(col.Name)
			im.logger.Warn("Numeric column has no values, demoting to text", zap.Error(err))

			col.Kind = model.KindText
			fill = im.placeholder
			strategy = fmt.Sprintf("'%s' (%s)", fill, err.Kind)
			break
		}
		fill = converter.FormatNumber(median(values))
		strategy = "mediana " + fill

	default:
		if mode, ok := mostFrequent(t, idx); ok {
			fill = mode
			strategy = fmt.Sprintf("moda '%s'", fill)
		} else {
			fill = im.placeholder
			strategy = fmt.Sprintf("'%s'", fill)
		}
	}

	for r := range t.Rows {
		if !t.Rows[r][idx].Valid {
			t.Rows[r][idx] = model.Text(fill)
		}
	}
	return strategy
}

// sweepEmptyRows drops rows that are null in every column
func sweepEmptyRows(t *model.Table) (*model.Table, model.StageResult) {
	stage := model.StageResult{Name: StageEmptyRowSweep}

	width := t.NumColumns()
	out := t.FilterRows(func(r int) bool {
		return t.RowNullCount(r) < width
	})

	stage.Add("linhas_removidas", t.NumRows()-out.NumRows())
	stage.Add("linhas_restantes", out.NumRows())
	return out, stage
}

// median averages the two middle values for an even count; values is reordered
func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

// mostFrequent returns the modal value of a column; ties go to the smallest string
func mostFrequent(t *model.Table, idx int) (string, bool) {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if row[idx].Valid {
			counts[row[idx].String]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}

	var best string
	bestCount := 0
	for value, n := range counts {
		if n > bestCount || (n == bestCount && value < best) {
			best, bestCount = value, n
		}
	}
	return best, true
}

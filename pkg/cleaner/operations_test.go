package cleaner

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// newTable builds a table with declared kinds; "" cells are null
func newTable(columns []string, rows ...[]string) *model.Table {
	t := &model.Table{Columns: make([]model.Column, len(columns))}
	for i, name := range columns {
		t.Columns[i] = model.Column{Name: name}
	}
	for _, values := range rows {
		row := make([]sql.NullString, len(columns))
		for i, v := range values {
			if v != "" {
				row[i] = model.Text(v)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	converter.NewTypeConverter(zap.NewNop()).DeclareKinds(t)
	return t
}

func column(t *testing.T, tbl *model.Table, name string) []sql.NullString {
	t.Helper()
	idx, ok := tbl.ColumnIndex(name)
	require.True(t, ok, "column %s not found", name)
	cells := make([]sql.NullString, 0, tbl.NumRows())
	for _, row := range tbl.Rows {
		cells = append(cells, row[idx])
	}
	return cells
}

func TestClassifyIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		cell  sql.NullString
		class IdentifierClass
	}{
		{"formatted CPF", model.Text("123.456.789-09"), IdentifierCPF},
		{"bare CPF", model.Text("12345678909"), IdentifierCPF},
		{"CPF with spaces", model.Text("123 456 789 09"), IdentifierCPF},
		{"formatted CNPJ", model.Text("12.345.678/0001-95"), IdentifierCNPJ},
		{"bare CNPJ", model.Text("12345678000195"), IdentifierCNPJ},
		{"too short", model.Text("123"), IdentifierInvalid},
		{"twelve digits", model.Text("123456789012"), IdentifierInvalid},
		{"letters", model.Text("123.456.789-0X"), IdentifierInvalid},
		{"punctuation only", model.Text(".-/"), IdentifierInvalid},
		{"null", model.Null(), IdentifierInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.class, ClassifyIdentifier(tt.cell))
		})
	}
}

func TestPruneColumns_ThresholdIsStrict(t *testing.T) {
	// 100 rows: A has 71 nulls, B has 70, C has 69
	rows := make([][]string, 100)
	for i := range rows {
		a, b, c := "a", "b", "c"
		if i < 71 {
			a = ""
		}
		if i < 70 {
			b = ""
		}
		if i < 69 {
			c = ""
		}
		rows[i] = []string{a, b, c, "x"}
	}
	tbl := newTable([]string{"A", "B", "C", "D"}, rows...)

	out, stage := pruneColumns(tbl, MaxColumnNullPercent)

	assert.Equal(t, []string{"B", "C", "D"}, out.ColumnNames())
	assert.Equal(t, 1, stage.Counter("colunas_removidas"))
	assert.Equal(t, 3, stage.Counter("colunas_restantes"))
	require.Len(t, stage.Details, 1)
	assert.Contains(t, stage.Details[0], "A: 71.0% nulos")

	for i := range out.Columns {
		assert.LessOrEqual(t, float64(out.NullCount(i))/float64(out.NumRows()), 0.70)
	}
}

func TestPruneColumns_EmptyTable(t *testing.T) {
	tbl := newTable([]string{"A", "B"})

	out, stage := pruneColumns(tbl, MaxColumnNullPercent)
	assert.Equal(t, 2, out.NumColumns())
	assert.Equal(t, 0, stage.Counter("colunas_removidas"))
}

func TestReclassifyIdentifiers(t *testing.T) {
	tbl := newTable([]string{"NOME", model.ColCPFCNPJ},
		[]string{"Ana", "123.456.789-09"},
		[]string{"Madeireira", "12.345.678/0001-95"},
		[]string{"Beto", "123"},
		[]string{"Carla", ""},
		[]string{"Davi", "98765432100"},
	)

	out, stage, err := reclassifyIdentifiers(tbl)
	require.NoError(t, err)

	assert.Equal(t, []sql.NullString{
		model.Null(),
		model.Text("12.345.678/0001-95"),
		model.Text("123"),
		model.Null(),
		model.Null(),
	}, column(t, out, model.ColCPFCNPJ))

	assert.Equal(t, 2, stage.Counter("cpfs_encontrados"))
	assert.Equal(t, 2, stage.Counter("cpfs_convertidos_null"))
	assert.Equal(t, 1, stage.Counter("cnpjs_mantidos"))
	assert.Equal(t, 2, stage.Counter("nulos_ou_invalidos"))

	// Input untouched
	assert.Equal(t, model.Text("123.456.789-09"), tbl.Rows[0][1])
}

func TestReclassifyIdentifiers_MissingColumn(t *testing.T) {
	tbl := newTable([]string{"NOME"}, []string{"Ana"})

	_, _, err := reclassifyIdentifiers(tbl)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingColumn)
	assert.Contains(t, err.Error(), model.ColCPFCNPJ)
}

func TestPruneRows_UsesCurrentColumnCount(t *testing.T) {
	tbl := newTable([]string{"A", "B", "C", "D"},
		[]string{"1", "2", "3", "4"}, // 0 nulls
		[]string{"1", "2", "3", ""},  // 1
		[]string{"1", "2", "", ""},   // 2, equal to threshold
		[]string{"1", "", "", ""},    // 3
		[]string{"", "", "", ""},     // 4
	)

	out, stage := pruneRows(tbl, MaxRowNullFraction)

	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, 2.0, stage.Counter("threshold_nulos"))
	assert.Equal(t, 2, stage.Counter("linhas_removidas"))
	assert.Equal(t, 3, stage.Counter("linhas_restantes"))
	for r := range out.Rows {
		assert.LessOrEqual(t, float64(out.RowNullCount(r)), 2.0)
	}
}

func TestPruneRows_OddColumnCount(t *testing.T) {
	tbl := newTable([]string{"A", "B", "C"},
		[]string{"1", "", "3"},
		[]string{"1", "", ""},
	)

	out, stage := pruneRows(tbl, MaxRowNullFraction)
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, 1.5, stage.Counter("threshold_nulos"))
}

func TestImputeNulls(t *testing.T) {
	tbl := newTable([]string{"EVEN", "ODD", "CAT", "TIE", "EMPTY"},
		[]string{"1", "5", "Pará", "b", ""},
		[]string{"2", "", "Pará", "a", ""},
		[]string{"3", "1", "Amapá", "b", ""},
		[]string{"10", "3", "", "a", ""},
		[]string{"", "", "", "", ""},
	)

	im := &imputer{placeholder: "Unknown", logger: zap.NewNop()}
	out, stage := im.imputeNulls(tbl)

	assert.Equal(t, model.Text("2.5"), out.Rows[4][0], "median of an even count averages the middle values")
	assert.Equal(t, model.Text("3"), out.Rows[1][1])
	assert.Equal(t, model.Text("Pará"), out.Rows[3][2])
	assert.Equal(t, model.Text("a"), out.Rows[4][3], "mode ties go to the smallest value")
	assert.Equal(t, model.Text("Unknown"), out.Rows[0][4])

	assert.Equal(t, 0, out.TotalNulls())
	assert.Equal(t, 11, stage.Counter("nulos_antes"))
	assert.Equal(t, 0, stage.Counter("nulos_depois"))
	assert.Equal(t, 11, stage.Counter("nulos_preenchidos"))
	assert.Len(t, stage.Details, 5)

	// Input untouched
	assert.False(t, tbl.Rows[4][0].Valid)
}

func TestImputeNulls_EmptyNumericColumnIsDemoted(t *testing.T) {
	tbl := &model.Table{
		Columns: []model.Column{{Name: "AREA", Kind: model.KindNumeric}},
		Rows:    [][]sql.NullString{{model.Null()}, {model.Null()}},
	}

	im := &imputer{placeholder: "Unknown", logger: zap.NewNop()}
	out, stage := im.imputeNulls(tbl)

	assert.Equal(t, model.KindText, out.Columns[0].Kind)
	assert.Equal(t, model.KindNumeric, tbl.Columns[0].Kind)
	assert.Equal(t, model.Text("Unknown"), out.Rows[1][0])
	require.Len(t, stage.Details, 1)
	assert.Contains(t, stage.Details[0], model.KindEmptyColumn.String())
}

func TestSweepEmptyRows(t *testing.T) {
	tbl := newTable([]string{"A", "B"},
		[]string{"1", ""},
		[]string{"", ""},
		[]string{"", "2"},
	)

	out, stage := sweepEmptyRows(tbl)
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, 1, stage.Counter("linhas_removidas"))
}

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{3}, 3},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{-1, 1000, 0, 2}, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.values), func(t *testing.T) {
			assert.Equal(t, tt.want, median(tt.values))
		})
	}
}

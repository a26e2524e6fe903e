package model

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Columns: []Column{{Name: "A", Kind: KindNumeric}, {Name: "B"}, {Name: "C"}},
		Rows: [][]sql.NullString{
			{Text("1"), Null(), Text("x")},
			{Null(), Null(), Null()},
			{Text("3"), Text("y"), Null()},
		},
	}
}

func TestTable_NullCounts(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, []int{1, 2, 2}, tbl.NullCounts())
	assert.Equal(t, 2, tbl.NullCount(1))
	assert.Equal(t, 3, tbl.RowNullCount(1))
	assert.Equal(t, 5, tbl.TotalNulls())
}

func TestTable_Lookup(t *testing.T) {
	tbl := sampleTable()

	idx, ok := tbl.ColumnIndex("B")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = tbl.ColumnIndex("b")
	assert.False(t, ok)
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := sampleTable()
	clone := tbl.Clone()

	clone.Rows[0][0] = Text("changed")
	clone.Columns[0].Kind = KindText

	assert.Equal(t, Text("1"), tbl.Rows[0][0])
	assert.Equal(t, KindNumeric, tbl.Columns[0].Kind)
}

func TestTable_DropColumns(t *testing.T) {
	tbl := sampleTable()
	out := tbl.DropColumns(map[int]bool{1: true})

	assert.Equal(t, []string{"A", "C"}, out.ColumnNames())
	assert.Equal(t, []sql.NullString{Text("3"), Null()}, out.Rows[2])
	assert.Equal(t, 3, tbl.NumColumns())
}

func TestTable_FilterRows(t *testing.T) {
	tbl := sampleTable()
	out := tbl.FilterRows(func(r int) bool { return tbl.RowNullCount(r) < 3 })

	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, Text("3"), out.Rows[1][0])
}

func TestPipelineError(t *testing.T) {
	err := MissingColumn("Tratamento CPF/CNPJ", ColCPFCNPJ)

	assert.Equal(t, "[MissingColumn] stage=Tratamento CPF/CNPJ column=CPF_CNPJ_DETENTOR: missing column", err.Error())
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.False(t, errors.Is(err, ErrStoreWrite))
	assert.True(t, err.Recoverable())

	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("load: %w", NewPipelineError(KindStoreWrite, cause).WithKey("123"))

	assert.ErrorIs(t, wrapped, ErrStoreWrite)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, KindStoreWrite, KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), "key=123")
	assert.Equal(t, KindUnknown, KindOf(cause))

	var pe *PipelineError
	require.ErrorAs(t, wrapped, &pe)
	assert.False(t, pe.Recoverable())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "DivergentGroup", KindDivergentGroup.String())
	assert.Equal(t, "Unknown(42)", ErrorKind(42).String())
}

func TestCleaningReport(t *testing.T) {
	r := NewCleaningReport("run", time.Unix(0, 0), Shape{Rows: 10, Columns: 4})

	stage := StageResult{Name: "s1"}
	stage.Add("linhas_removidas", 2)
	stage.Detail("detalhe")
	r.AddStage(stage)
	r.Final = Shape{Rows: 8, Columns: 3}

	assert.Equal(t, 2, r.RowsRemoved())
	assert.Equal(t, 1, r.ColumnsRemoved())
	assert.Equal(t, 20.0, r.RowsRemovedPercent())
	assert.Equal(t, 25.0, r.ColumnsRemovedPercent())
	assert.Equal(t, 2, r.Stage("s1").Counter("linhas_removidas"))
	assert.Nil(t, r.Stage("s1").Counter("absent"))
	assert.Nil(t, r.Stage("absent"))

	empty := NewCleaningReport("run", time.Unix(0, 0), Shape{})
	assert.Equal(t, 0.0, empty.RowsRemovedPercent())
}

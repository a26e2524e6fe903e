package cleaner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/cleaner"
	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
	"github.com/David-Botos/pmfs-ingress/pkg/source"
)

const rawCSV = `NRO_REGISTRO;CPF_CNPJ_DETENTOR;MUNICIPIO;AREA_MANEJO_FLORESTAL;OBSERVACAO;MODALIDADE_PMFS
1;123.456.789-09;Altamira;100.5;;Pleno
2;12.345.678/0001-95;Altamira;;;Simplificado
3;12.345.678/0001-95;;200;;Pleno
4;;;;;
5;98765432100;Marabá;300;nota;Pleno
`

var fixedClock = func() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func readRaw(t *testing.T) *model.Table {
	t.Helper()
	tbl, err := source.ReadCSV(strings.NewReader(rawCSV), source.DefaultCSVOptions(),
		converter.NewTypeConverter(zap.NewNop()))
	require.NoError(t, err)
	return tbl
}

func newCleaner(t *testing.T, opts cleaner.Options) *cleaner.DataCleaner {
	t.Helper()
	c, err := cleaner.NewDataCleaner(opts, zap.NewNop())
	require.NoError(t, err)
	return c.WithClock(fixedClock)
}

func TestNewDataCleaner_RequiresLogger(t *testing.T) {
	_, err := cleaner.NewDataCleaner(cleaner.Options{}, nil)
	assert.Error(t, err)
}

func TestClean_Pipeline(t *testing.T) {
	raw := readRaw(t)
	before := raw.Clone()

	out, report, err := newCleaner(t, cleaner.Options{}).Clean(raw)
	require.NoError(t, err)

	// OBSERVACAO is 80% null and goes; row 4 has 5 of 5 nulls and goes
	assert.Equal(t, []string{"NRO_REGISTRO", "CPF_CNPJ_DETENTOR", "MUNICIPIO",
		"AREA_MANEJO_FLORESTAL", "MODALIDADE_PMFS"}, out.ColumnNames())
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, 0, out.TotalNulls())

	// CPFs were nulled, then imputed with the CNPJ mode
	idx, ok := out.ColumnIndex(model.ColCPFCNPJ)
	require.True(t, ok)
	for _, row := range out.Rows {
		assert.Equal(t, "12.345.678/0001-95", row[idx].String)
	}

	// Median of 100.5, 200 and 300
	area, _ := out.ColumnIndex("AREA_MANEJO_FLORESTAL")
	assert.Equal(t, "200", out.Rows[1][area].String)

	assert.Equal(t, model.Shape{Rows: 5, Columns: 6}, report.Original)
	assert.Equal(t, model.Shape{Rows: 4, Columns: 5}, report.Final)
	require.Len(t, report.Stages, 5)
	assert.Equal(t, cleaner.StageColumnPruning, report.Stages[0].Name)
	assert.Equal(t, cleaner.StageEmptyRowSweep, report.Stages[4].Name)
	assert.Equal(t, 2, report.Stage(cleaner.StageIdentifiers).Counter("cpfs_convertidos_null"))
	assert.Equal(t, 0, report.Analysis.TotalNulls)
	assert.Empty(t, report.Analysis.TopNullColumns)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, fixedClock(), report.Timestamp)

	assert.Equal(t, before, raw, "input table must not be modified")
}

func TestClean_MissingIdentifierColumnIsFatal(t *testing.T) {
	raw, err := source.ReadCSV(strings.NewReader("NRO_REGISTRO;MUNICIPIO\n1;Altamira\n"),
		source.DefaultCSVOptions(), converter.NewTypeConverter(zap.NewNop()))
	require.NoError(t, err)

	_, _, err = newCleaner(t, cleaner.Options{}).Clean(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingColumn)
	assert.Equal(t, model.KindMissingColumn, model.KindOf(err))
}

func TestClean_IsDeterministic(t *testing.T) {
	c := newCleaner(t, cleaner.Options{})

	var outputs [2]bytes.Buffer
	for i := range outputs {
		out, _, err := c.Clean(readRaw(t))
		require.NoError(t, err)
		require.NoError(t, source.WriteCSV(&outputs[i], out, source.DefaultCSVOptions()))
	}

	assert.Equal(t, outputs[0].Bytes(), outputs[1].Bytes())
}

func TestClean_EmptyTable(t *testing.T) {
	raw, err := source.ReadCSV(strings.NewReader("NRO_REGISTRO;CPF_CNPJ_DETENTOR\n"),
		source.DefaultCSVOptions(), converter.NewTypeConverter(zap.NewNop()))
	require.NoError(t, err)

	out, report, err := newCleaner(t, cleaner.Options{}).Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, 2, out.NumColumns())
	assert.Equal(t, 0.0, report.RowsRemovedPercent())
}

func TestRenderReport(t *testing.T) {
	_, report, err := newCleaner(t, cleaner.Options{}).Clean(readRaw(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cleaner.RenderReport(&buf, report))
	text := buf.String()

	lines := strings.Split(text, "\n")
	assert.Equal(t, strings.Repeat("=", 80), lines[0])
	assert.Equal(t, "RELATÓRIO DE LIMPEZA - BASE PMFS AMAZÔNIA LEGAL", lines[1])
	assert.Equal(t, "Data/Hora: 2024-01-02 03:04:05", lines[3])

	for _, want := range []string{
		"RESUMO GERAL",
		"Base original: 5 linhas x 6 colunas",
		"Base final: 4 linhas x 5 colunas",
		"Linhas removidas: 1 (20.0%)",
		"Colunas removidas: 1 (16.7%)",
		"1. Remoção de colunas com >70% nulos",
		"   - colunas_removidas: 1",
		"     * OBSERVACAO: 80.0% nulos",
		"2. Tratamento CPF/CNPJ",
		"   - cpfs_convertidos_null: 2",
		"3. Remoção de linhas com muitos nulos",
		"   - threshold_nulos: 2.5",
		"4. Preenchimento de valores nulos",
		"   - nulos_depois: 0",
		"5. Remoção de linhas completamente vazias",
		"ANÁLISE DA BASE FINAL",
		"Total de nulos na base final: 0",
		"TOP 10 COLUNAS COM MAIS NULOS (BASE FINAL)",
		"RELATÓRIO GERADO AUTOMATICAMENTE",
	} {
		assert.Contains(t, text, want)
	}

	// Stage blocks appear in pipeline order
	assert.Less(t, strings.Index(text, "1. Remoção"), strings.Index(text, "2. Tratamento"))
	assert.Less(t, strings.Index(text, "4. Preenchimento"), strings.Index(text, "ANÁLISE DA BASE FINAL"))
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "relatorio_limpeza_20240102_030405.txt", cleaner.ReportFileName(fixedClock()))
}

func TestRun_WritesCleanedTableAndReport(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(rawPath, []byte(rawCSV), 0o644))

	opts := cleaner.Options{
		CleanPath:  filepath.Join(dir, "out", "limpa.csv"),
		Output:     source.DefaultCSVOptions(),
		ReportsDir: filepath.Join(dir, "reports"),
	}
	conv := converter.NewTypeConverter(zap.NewNop())
	reader := source.NewFileReader(rawPath, source.DefaultCSVOptions(), conv, zap.NewNop())

	result, err := newCleaner(t, opts).Run(context.Background(), reader)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "reports", "relatorio_limpeza_20240102_030405.txt"), result.ReportPath)
	assert.FileExists(t, result.ReportPath)

	cleaned, err := source.ReadCSVFile(opts.CleanPath, opts.Output, conv)
	require.NoError(t, err)
	assert.Equal(t, result.Table.ColumnNames(), cleaned.ColumnNames())
	assert.Equal(t, 4, cleaned.NumRows())
	assert.Equal(t, 0, cleaned.TotalNulls())

	content, err := os.ReadFile(opts.CleanPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content),
		"NRO_REGISTRO;CPF_CNPJ_DETENTOR;MUNICIPIO;AREA_MANEJO_FLORESTAL;MODALIDADE_PMFS\n"))
}

func TestRun_MissingInputFile(t *testing.T) {
	conv := converter.NewTypeConverter(zap.NewNop())
	reader := source.NewFileReader(filepath.Join(t.TempDir(), "absent.csv"),
		source.DefaultCSVOptions(), conv, zap.NewNop())

	_, err := newCleaner(t, cleaner.Options{}).Run(context.Background(), reader)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInputRead)
}

package cleaner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

const (
	reportTitle      = "RELATÓRIO DE LIMPEZA - BASE PMFS AMAZÔNIA LEGAL"
	reportFooter     = "RELATÓRIO GERADO AUTOMATICAMENTE"
	reportTimeLayout = "2006-01-02 15:04:05"
	reportFileLayout = "20060102_150405"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 40)
)

// ReportFileName returns the report file name for a run started at ts
func ReportFileName(ts time.Time) string {
	return "relatorio_limpeza_" + ts.Format(reportFileLayout) + ".txt"
}

// RenderReport writes the text form of a cleaning report
func RenderReport(w io.Writer, r *model.CleaningReport) error {
	var b strings.Builder

	b.WriteString(heavyRule + "\n")
	b.WriteString(reportTitle + "\n")
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "Data/Hora: %s\n", r.Timestamp.Format(reportTimeLayout))
	fmt.Fprintf(&b, "Execução: %s\n\n", r.RunID)

	b.WriteString("RESUMO GERAL\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "Base original: %d linhas x %d colunas\n", r.Original.Rows, r.Original.Columns)
	fmt.Fprintf(&b, "Base final: %d linhas x %d colunas\n", r.Final.Rows, r.Final.Columns)
	fmt.Fprintf(&b, "Linhas removidas: %d (%.1f%%)\n", r.RowsRemoved(), r.RowsRemovedPercent())
	fmt.Fprintf(&b, "Colunas removidas: %d (%.1f%%)\n\n", r.ColumnsRemoved(), r.ColumnsRemovedPercent())

	b.WriteString("ETAPAS DE LIMPEZA\n")
	b.WriteString(lightRule + "\n")
	for i, stage := range r.Stages {
		fmt.Fprintf(&b, "%d. %s\n", i+1, stage.Name)
		for _, c := range stage.Counters {
			fmt.Fprintf(&b, "   - %s: %s\n", c.Name, formatCounter(c.Value))
		}
		if len(stage.Details) > 0 {
			b.WriteString("   - detalhes:\n")
			for _, d := range stage.Details {
				fmt.Fprintf(&b, "     * %s\n", d)
			}
		}
		b.WriteString("\n")
	}

	a := r.Analysis
	b.WriteString("ANÁLISE DA BASE FINAL\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "Total de linhas: %d\n", a.Rows)
	fmt.Fprintf(&b, "Total de colunas: %d\n", a.Columns)
	fmt.Fprintf(&b, "Colunas com nulos: %d\n", a.ColumnsWithNulls)
	fmt.Fprintf(&b, "Colunas sem nulos: %d\n", a.ColumnsWithoutNulls)
	fmt.Fprintf(&b, "Total de nulos na base final: %d\n\n", a.TotalNulls)

	b.WriteString("TOP 10 COLUNAS COM MAIS NULOS (BASE FINAL)\n")
	b.WriteString(lightRule + "\n")
	for _, c := range a.TopNullColumns {
		fmt.Fprintf(&b, "%s: %d nulos (%.1f%%)\n", c.Name, c.Nulls, c.Percent)
	}

	b.WriteString("\n" + heavyRule + "\n")
	b.WriteString(reportFooter + "\n")
	b.WriteString(heavyRule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteReport renders r into dir, creating the directory if needed, and returns the file path
func WriteReport(dir string, r *model.CleaningReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", model.NewPipelineError(model.KindOutputWrite,
			fmt.Errorf("failed to create reports directory: %w", err))
	}

	path := filepath.Join(dir, ReportFileName(r.Timestamp))
	f, err := os.Create(path)
	if err != nil {
		return "", model.NewPipelineError(model.KindOutputWrite, err)
	}
	defer f.Close()

	if err := RenderReport(f, r); err != nil {
		return "", model.NewPipelineError(model.KindOutputWrite,
			fmt.Errorf("failed to write report: %w", err))
	}
	return path, f.Close()
}

func formatCounter(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return converter.FormatNumber(val)
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

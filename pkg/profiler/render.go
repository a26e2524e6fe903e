package profiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Render prints every section of a profile as console tables
func Render(w io.Writer, p *Profile) {
	section(w, "RESUMO GERAL")
	fmt.Fprintf(w, "Linhas: %d\nColunas: %d\n", p.Shape.Rows, p.Shape.Columns)

	tw := newTable(w, "Tipo", "Colunas")
	for _, k := range p.Shape.Kinds {
		tw.AppendRow(table.Row{k.Label, k.Count})
	}
	tw.Render()

	tw = newTable(w, "Subtipo", "Colunas")
	for _, k := range p.Shape.Subtypes {
		tw.AppendRow(table.Row{k.Label, k.Count})
	}
	tw.Render()

	if len(p.Shape.Numeric) > 0 {
		tw = newTable(w, "Coluna", "N", "Média", "Desvio", "Mín", "Máx")
		for _, s := range p.Shape.Numeric {
			tw.AppendRow(table.Row{s.Column, s.Count,
				fmt.Sprintf("%.2f", s.Mean), fmt.Sprintf("%.2f", s.Std),
				fmt.Sprintf("%.2f", s.Min), fmt.Sprintf("%.2f", s.Max)})
		}
		tw.Render()
	}

	renderNulls(w, p.Nulls, p.Shape.Columns)

	section(w, "ANÁLISE DE DUPLICATAS")
	fmt.Fprintf(w, "Duplicatas totais: %d\n", p.Duplicates.Rows)
	if p.Duplicates.RegistrationCheck {
		fmt.Fprintf(w, "Duplicatas em NRO_REGISTRO: %d\n", p.Duplicates.Registration)
	}
	if p.Duplicates.CompositeCheck {
		fmt.Fprintf(w, "Duplicatas em (NRO_AUTORIZACAO, UF, MUNICIPIO): %d\n", p.Duplicates.Composite)
	}

	section(w, "VALORES ÚNICOS POR COLUNA")
	tw = newTable(w, "Coluna", "Valores únicos")
	for _, c := range p.Cardinality {
		tw.AppendRow(table.Row{c.Column, c.Count})
	}
	tw.Render()

	section(w, "DISTRIBUIÇÃO DE CATEGORIAS")
	for _, d := range p.Categories {
		fmt.Fprintf(w, "\n%s - %d categorias únicas\n", d.Column, d.Distinct)
		tw = newTable(w, "Valor", "Contagem")
		for _, v := range d.Top {
			tw.AppendRow(table.Row{v.Value, v.Count})
		}
		tw.Render()
	}

	section(w, "VALORES INCONSISTENTES")
	for _, m := range p.Sentinels {
		quoted := make([]string, len(m.Values))
		for i, v := range m.Values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(w, "\n%s: %d valores possivelmente inválidos\n", m.Column, m.Count)
		fmt.Fprintf(w, "Valores encontrados: [%s]\n", strings.Join(quoted, ", "))
	}

	if len(p.Skipped) > 0 {
		section(w, "VERIFICAÇÕES IGNORADAS")
		for _, err := range p.Skipped {
			fmt.Fprintf(w, "  - coluna ausente: %s\n", err.Column)
		}
	}

	fmt.Fprintln(w, "\nAnálise exploratória concluída. Nenhum dado foi alterado.")
}

func renderNulls(w io.Writer, n NullCensus, columns int) {
	section(w, "ANÁLISE DE NULOS")

	tw := newTable(w, "Coluna", "Nulos", "%")
	for _, c := range n.Columns {
		tw.AppendRow(table.Row{c.Name, c.Nulls, fmt.Sprintf("%.1f", c.Percent)})
	}
	tw.Render()

	fmt.Fprintf(w, "\nTotal de colunas com nulos: %d\n", n.ColumnsWithNulls)
	fmt.Fprintf(w, "Colunas com mais de 50%% de nulos: %d\n", n.OverHalf)
	fmt.Fprintf(w, "Colunas que restariam após remover as com >50%% nulos: %d\n", columns-n.OverHalf)
	fmt.Fprintf(w, "Percentual de colunas mantidas: %.1f%%\n", n.KeptPercent)

	fmt.Fprintf(w, "\nColunas que SERIAM REMOVIDAS (%d):\n", len(n.WouldRemove))
	for _, c := range n.WouldRemove {
		fmt.Fprintf(w, "  - %s: %d nulos (%.1f%%)\n", c.Name, c.Nulls, c.Percent)
	}
	fmt.Fprintf(w, "\nColunas que SERIAM MANTIDAS (%d):\n", len(n.WouldKeep))
	for _, c := range n.WouldKeep {
		fmt.Fprintf(w, "  - %s: %d nulos (%.1f%%)\n", c.Name, c.Nulls, c.Percent)
	}
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n===== %s =====\n", title)
}

func newTable(w io.Writer, header ...interface{}) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row(header))
	return tw
}

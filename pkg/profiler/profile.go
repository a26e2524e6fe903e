// Package profiler computes data quality diagnostics over a raw PMFS table.
// Profiling never modifies the table and never writes files.
package profiler

import (
	"database/sql"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

const (
	stageName          = "profile"
	whatIfNullFraction = 0.5
	topCategories      = 10
)

// Profile holds the results of every diagnostic
type Profile struct {
	Shape       ShapeSummary
	Nulls       NullCensus
	Duplicates  DuplicateCensus
	Cardinality []ColumnCount
	Categories  []CategoryDistribution
	Sentinels   []SentinelMatch

	// Skipped lists the checks that could not run because a column is absent
	Skipped []*model.PipelineError
}

// LabelCount is a labelled count, used for type breakdowns
type LabelCount struct {
	Label string
	Count int
}

// NumericStats summarizes the values of one numeric column
type NumericStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
}

// ShapeSummary is the size of the table and its column type breakdown
type ShapeSummary struct {
	Rows     int
	Columns  int
	Kinds    []LabelCount
	Subtypes []LabelCount
	Numeric  []NumericStats
}

// NullCensus reports nulls per column and a what-if projection of dropping
// columns above the 50% mark
type NullCensus struct {
	Columns          []model.ColumnNulls // Columns with nulls, by count descending
	ColumnsWithNulls int
	OverHalf         int
	WouldRemove      []model.ColumnNulls
	WouldKeep        []model.ColumnNulls
	KeptPercent      float64
}

// DuplicateCensus counts rows that repeat an earlier row
type DuplicateCensus struct {
	Rows              int
	RegistrationCheck bool
	Registration      int
	CompositeCheck    bool
	Composite         int
}

// ColumnCount pairs a column with a count
type ColumnCount struct {
	Column string
	Count  int
}

// ValueCount pairs a value with its frequency
type ValueCount struct {
	Value string
	Count int
}

// CategoryDistribution is the frequency table of a categorical column
type CategoryDistribution struct {
	Column   string
	Distinct int
	Top      []ValueCount
}

// SentinelMatch reports literal "no value" strings found in a column
type SentinelMatch struct {
	Column string
	Count  int
	Values []string // Distinct matches, in order of first appearance
}

// Profiler computes profiles
type Profiler struct {
	conv   *converter.TypeConverter
	logger *zap.Logger
}

// NewProfiler creates a new profiler
func NewProfiler(conv *converter.TypeConverter, logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{conv: conv, logger: logger}
}

// Profile runs every diagnostic on t. Checks that hit a recoverable error are
// listed in Skipped; any other error aborts the profile.
func (p *Profiler) Profile(t *model.Table) (*Profile, error) {
	profile := &Profile{
		Shape:       p.summarizeShape(t),
		Nulls:       censusNulls(t),
		Cardinality: censusCardinality(t),
		Sentinels:   scanSentinels(t, model.SentinelValues),
	}

	duplicates, skipped := censusDuplicates(t)
	profile.Duplicates = duplicates

	categories, more := distributeCategories(t, model.CategoricalColumns)
	profile.Categories = categories

	var err error
	if profile.Skipped, err = p.triage(append(skipped, more...)); err != nil {
		return nil, err
	}

	p.logger.Info("Profile complete",
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumColumns()),
		zap.Int("skipped", len(profile.Skipped)))

	return profile, nil
}

// triage keeps the recoverable errors and returns the first fatal one
func (p *Profiler) triage(errs []*model.PipelineError) ([]*model.PipelineError, error) {
	var skipped []*model.PipelineError
	for _, err := range errs {
		if !err.Recoverable() {
			return nil, err
		}
		p.logger.Info("Skipped check", zap.String("column", err.Column), zap.Error(err))
		skipped = append(skipped, err)
	}
	return skipped, nil
}

func (p *Profiler) summarizeShape(t *model.Table) ShapeSummary {
	summary := ShapeSummary{Rows: t.NumRows(), Columns: t.NumColumns()}

	kinds := make(map[string]int)
	for _, col := range t.Columns {
		kinds[col.Kind.String()]++
	}
	summary.Kinds = sortedLabelCounts(kinds)

	subtypes := make(map[string]int)
	for _, s := range p.conv.Subtypes(t) {
		subtypes[string(s)]++
	}
	summary.Subtypes = sortedLabelCounts(subtypes)

	for i, col := range t.Columns {
		if col.Kind != model.KindNumeric {
			continue
		}
		values := converter.NumericValues(t, i)
		if len(values) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(values, nil)
		if len(values) < 2 {
			std = 0
		}
		summary.Numeric = append(summary.Numeric, NumericStats{
			Column: col.Name,
			Count:  len(values),
			Mean:   mean,
			Std:    std,
			Min:    floats.Min(values),
			Max:    floats.Max(values),
		})
	}
	return summary
}

func censusNulls(t *model.Table) NullCensus {
	var census NullCensus
	limit := float64(t.NumRows()) * whatIfNullFraction

	all := make([]model.ColumnNulls, 0, t.NumColumns())
	for i, n := range t.NullCounts() {
		pct := 0.0
		if t.NumRows() > 0 {
			pct = float64(n) / float64(t.NumRows()) * 100
		}
		all = append(all, model.ColumnNulls{Name: t.Columns[i].Name, Nulls: n, Percent: pct})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Nulls > all[j].Nulls })

	for _, c := range all {
		if c.Nulls > 0 {
			census.Columns = append(census.Columns, c)
			census.ColumnsWithNulls++
		}
		if float64(c.Nulls) > limit {
			census.OverHalf++
			census.WouldRemove = append(census.WouldRemove, c)
		} else {
			census.WouldKeep = append(census.WouldKeep, c)
		}
	}

	if t.NumColumns() > 0 {
		census.KeptPercent = float64(len(census.WouldKeep)) / float64(t.NumColumns()) * 100
	}
	return census
}

func censusDuplicates(t *model.Table) (DuplicateCensus, []*model.PipelineError) {
	var skipped []*model.PipelineError

	all := make([]int, t.NumColumns())
	for i := range all {
		all[i] = i
	}
	census := DuplicateCensus{Rows: countDuplicates(t, all)}

	if idx, ok := t.ColumnIndex(model.ColNroRegistro); ok {
		census.RegistrationCheck = true
		census.Registration = countDuplicates(t, []int{idx})
	} else {
		skipped = append(skipped, model.MissingColumn(stageName, model.ColNroRegistro))
	}

	composite, missing := columnIndexes(t, model.AuthorizationKey)
	if missing == "" {
		census.CompositeCheck = true
		census.Composite = countDuplicates(t, composite)
	} else {
		skipped = append(skipped, model.MissingColumn(stageName, missing))
	}

	return census, skipped
}

// countDuplicates counts rows whose values on cols repeat an earlier row; nulls equal nulls
func countDuplicates(t *model.Table, cols []int) int {
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	for _, row := range t.Rows {
		key := rowKey(row, cols)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func rowKey(row []sql.NullString, cols []int) string {
	var b strings.Builder
	for _, i := range cols {
		if row[i].Valid {
			b.WriteByte(1)
			b.WriteString(row[i].String)
		} else {
			b.WriteByte(0)
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

func censusCardinality(t *model.Table) []ColumnCount {
	counts := make([]ColumnCount, 0, t.NumColumns())
	for i, col := range t.Columns {
		counts = append(counts, ColumnCount{Column: col.Name, Count: len(frequencies(t, i))})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

func distributeCategories(t *model.Table, columns []string) ([]CategoryDistribution, []*model.PipelineError) {
	var out []CategoryDistribution
	var skipped []*model.PipelineError

	for _, name := range columns {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			skipped = append(skipped, model.MissingColumn(stageName, name))
			continue
		}

		freq := frequencies(t, idx)
		top := make([]ValueCount, 0, len(freq))
		for v, n := range freq {
			top = append(top, ValueCount{Value: v, Count: n})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].Count != top[j].Count {
				return top[i].Count > top[j].Count
			}
			return top[i].Value < top[j].Value
		})
		if len(top) > topCategories {
			top = top[:topCategories]
		}

		out = append(out, CategoryDistribution{
			Column:   t.Columns[idx].Name,
			Distinct: len(freq),
			Top:      top,
		})
	}
	return out, skipped
}

// scanSentinels matches non-null cells case-insensitively against vocabulary
func scanSentinels(t *model.Table, vocabulary []string) []SentinelMatch {
	lookup := make(map[string]bool, len(vocabulary))
	for _, v := range vocabulary {
		lookup[strings.ToUpper(v)] = true
	}

	var out []SentinelMatch
	for i, col := range t.Columns {
		match := SentinelMatch{Column: col.Name}
		found := make(map[string]bool)
		for _, row := range t.Rows {
			cell := row[i]
			if !cell.Valid || !lookup[strings.ToUpper(cell.String)] {
				continue
			}
			match.Count++
			if !found[cell.String] {
				found[cell.String] = true
				match.Values = append(match.Values, cell.String)
			}
		}
		if match.Count > 0 {
			out = append(out, match)
		}
	}
	return out
}

// frequencies counts the non-null values of a column
func frequencies(t *model.Table, idx int) map[string]int {
	freq := make(map[string]int)
	for _, row := range t.Rows {
		if row[idx].Valid {
			freq[row[idx].String]++
		}
	}
	return freq
}

// columnIndexes resolves every name, or returns the first missing one
func columnIndexes(t *model.Table, names []string) ([]int, string) {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		i, ok := t.ColumnIndex(name)
		if !ok {
			return nil, name
		}
		idx = append(idx, i)
	}
	return idx, ""
}

func sortedLabelCounts(m map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(m))
	for label, n := range m {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

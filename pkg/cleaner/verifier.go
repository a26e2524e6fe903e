package cleaner

import (
	"sort"

	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// topNullColumns is how many columns the final analysis lists
const topNullColumns = 10

// Verifier inspects the cleaned table before it is written
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	return &Verifier{logger: logger}
}

// Analyze computes the final-base analysis of a cleaned table
func (v *Verifier) Analyze(t *model.Table) model.FinalAnalysis {
	analysis := model.FinalAnalysis{
		Rows:    t.NumRows(),
		Columns: t.NumColumns(),
	}

	var withNulls []model.ColumnNulls
	for i, n := range t.NullCounts() {
		analysis.TotalNulls += n
		if n == 0 {
			analysis.ColumnsWithoutNulls++
			continue
		}

		analysis.ColumnsWithNulls++
		pct := 0.0
		if t.NumRows() > 0 {
			pct = float64(n) / float64(t.NumRows()) * 100
		}
		withNulls = append(withNulls, model.ColumnNulls{
			Name:    t.Columns[i].Name,
			Nulls:   n,
			Percent: pct,
		})
	}

	// Column order breaks ties
	sort.SliceStable(withNulls, func(i, j int) bool {
		return withNulls[i].Nulls > withNulls[j].Nulls
	})
	if len(withNulls) > topNullColumns {
		withNulls = withNulls[:topNullColumns]
	}
	analysis.TopNullColumns = withNulls

	if analysis.TotalNulls > 0 {
		v.logger.Warn("Cleaned table still has nulls",
			zap.Int("totalNulls", analysis.TotalNulls),
			zap.Int("columnsWithNulls", analysis.ColumnsWithNulls))
	} else {
		v.logger.Info("Cleaned table verified",
			zap.Int("rows", analysis.Rows),
			zap.Int("columns", analysis.Columns))
	}

	return analysis
}

package cleaner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
	"github.com/David-Botos/pmfs-ingress/pkg/source"
)

// Options configures a cleaning run
type Options struct {
	CleanPath   string            // Cleaned table destination
	Output      source.CSVOptions // Delimiter and encoding of the cleaned table
	ReportsDir  string            // Directory the text report is written to
	Placeholder string            // Fill value for columns with nothing to impute from
}

// Result describes the artifacts of a run
type Result struct {
	Table      *model.Table
	Report     *model.CleaningReport
	CleanPath  string
	ReportPath string
}

// DataCleaner applies the five cleaning stages to a raw PMFS table
type DataCleaner struct {
	opts     Options
	logger   *zap.Logger
	verifier *Verifier
	now      func() time.Time
	newRunID func() string
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(opts Options, logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.Placeholder == "" {
		opts.Placeholder = "Unknown"
	}

	return &DataCleaner{
		opts:     opts,
		logger:   logger,
		verifier: NewVerifier(logger),
		now:      time.Now,
		newRunID: uuid.NewString,
	}, nil
}

// WithClock replaces the clock used for report timestamps
func (c *DataCleaner) WithClock(now func() time.Time) *DataCleaner {
	c.now = now
	return c
}

// Clean runs the five stages on raw and returns the cleaned table with its report.
// raw is never modified.
func (c *DataCleaner) Clean(raw *model.Table) (*model.Table, *model.CleaningReport, error) {
	report := model.NewCleaningReport(c.newRunID(), c.now(), model.ShapeOf(raw))
	c.logger.Info("Starting cleaning run",
		zap.String("runID", report.RunID),
		zap.Int("rows", raw.NumRows()),
		zap.Int("columns", raw.NumColumns()))

	t, stage := pruneColumns(raw, MaxColumnNullPercent)
	c.logStage(stage, t)
	report.AddStage(stage)

	t, stage, err := reclassifyIdentifiers(t)
	if err != nil {
		return nil, nil, err
	}
	c.logStage(stage, t)
	report.AddStage(stage)

	t, stage = pruneRows(t, MaxRowNullFraction)
	c.logStage(stage, t)
	report.AddStage(stage)

	im := &imputer{placeholder: c.opts.Placeholder, logger: c.logger}
	t, stage = im.imputeNulls(t)
	c.logStage(stage, t)
	report.AddStage(stage)

	t, stage = sweepEmptyRows(t)
	c.logStage(stage, t)
	report.AddStage(stage)

	report.Final = model.ShapeOf(t)
	report.Analysis = c.verifier.Analyze(t)

	c.logger.Info("Cleaning complete",
		zap.String("runID", report.RunID),
		zap.Int("rowsRemoved", report.RowsRemoved()),
		zap.Int("columnsRemoved", report.ColumnsRemoved()))

	return t, report, nil
}

// Run reads the raw table, cleans it, and writes the cleaned table and the report
func (c *DataCleaner) Run(ctx context.Context, reader source.Reader) (*Result, error) {
	raw, err := reader.Read(ctx)
	if err != nil {
		return nil, err
	}

	cleaned, report, err := c.Clean(raw)
	if err != nil {
		return nil, err
	}

	if err := source.WriteCSVFile(c.opts.CleanPath, cleaned, c.opts.Output); err != nil {
		return nil, err
	}
	c.logger.Info("Cleaned table written", zap.String("path", c.opts.CleanPath))

	reportPath, err := WriteReport(c.opts.ReportsDir, report)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Cleaning report written", zap.String("path", reportPath))

	return &Result{
		Table:      cleaned,
		Report:     report,
		CleanPath:  c.opts.CleanPath,
		ReportPath: reportPath,
	}, nil
}

func (c *DataCleaner) logStage(stage model.StageResult, t *model.Table) {
	fields := []zap.Field{
		zap.String("stage", stage.Name),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumColumns()),
	}
	for _, counter := range stage.Counters {
		fields = append(fields, zap.Any(counter.Name, counter.Value))
	}
	c.logger.Info("Stage complete", fields...)

	for _, d := range stage.Details {
		c.logger.Debug("Stage detail", zap.String("stage", stage.Name), zap.String("detail", d))
	}
}

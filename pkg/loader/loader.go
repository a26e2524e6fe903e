// Package loader groups the cleaned PMFS table by registration number and
// upserts one project document per group into a document store.
package loader

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
	"github.com/David-Botos/pmfs-ingress/pkg/source"
	"github.com/David-Botos/pmfs-ingress/pkg/store"
)

// Options configures a load run
type Options struct {
	Collection string // Target collection, "projetos" when empty
	Policy     string // Group aggregation policy, first or strict
}

// Loader writes project documents to a store
type Loader struct {
	store  store.DocumentStore
	conv   *converter.TypeConverter
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewLoader creates a new Loader instance
func NewLoader(s store.DocumentStore, conv *converter.TypeConverter, opts Options, logger *zap.Logger) (*Loader, error) {
	if s == nil {
		return nil, errors.New("document store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.Collection == "" {
		opts.Collection = model.DefaultCollection
	}
	if opts.Policy == "" {
		opts.Policy = config.GroupPolicyFirst
	}
	if conv == nil {
		conv = converter.NewTypeConverter(logger)
	}

	return &Loader{
		store:  s,
		conv:   conv,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Load reads the cleaned table and upserts every project. The first store
// failure aborts the run; documents already written stay written.
func (l *Loader) Load(ctx context.Context, reader source.Reader) (*LoadMetrics, error) {
	metrics := NewLoadMetrics(uuid.NewString(), l.opts.Collection, l.now(), l.logger)

	err := l.load(ctx, reader, metrics)
	metrics.Complete(l.now(), err)
	return metrics, err
}

func (l *Loader) load(ctx context.Context, reader source.Reader, metrics *LoadMetrics) error {
	table, err := reader.Read(ctx)
	if err != nil {
		return err
	}
	metrics.RowsRead = table.NumRows()

	build, err := BuildProjects(table, l.conv, l.opts.Policy, l.logger)
	if build != nil {
		metrics.DivergentFields = len(build.Divergences)
		metrics.SkippedRows = build.BlankKeys
	}
	if err != nil {
		return err
	}
	metrics.Groups = len(build.Projects)

	l.logger.Info("Built project documents",
		zap.String("runID", metrics.RunID),
		zap.Int("rows", table.NumRows()),
		zap.Int("groups", len(build.Projects)),
		zap.Int("skippedRows", build.BlankKeys))

	for _, project := range build.Projects {
		if err := l.store.Upsert(ctx, l.opts.Collection, project.Key, project); err != nil {
			return err
		}
		metrics.RecordDocument()
		l.logger.Debug("Upserted project", zap.String("key", project.Key))
	}
	return nil
}

package loader

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LoadMetrics tracks the progress of one load run
type LoadMetrics struct {
	logger           *zap.Logger
	RunID            string
	Collection       string
	StartTime        time.Time
	EndTime          time.Time
	RowsRead         int
	SkippedRows      int // Rows without a registration number
	Groups           int
	DocumentsWritten int
	DivergentFields  int
	Failed           bool
}

// NewLoadMetrics creates a new LoadMetrics instance
func NewLoadMetrics(runID, collection string, start time.Time, logger *zap.Logger) *LoadMetrics {
	return &LoadMetrics{
		logger:     logger,
		RunID:      runID,
		Collection: collection,
		StartTime:  start,
	}
}

// RecordDocument counts one successful upsert
func (m *LoadMetrics) RecordDocument() {
	m.DocumentsWritten++
}

// Complete marks the run as finished and logs the summary
func (m *LoadMetrics) Complete(end time.Time, err error) {
	m.EndTime = end
	m.Failed = err != nil

	fields := []zap.Field{
		zap.String("runID", m.RunID),
		zap.String("collection", m.Collection),
		zap.Int("rowsRead", m.RowsRead),
		zap.Int("skippedRows", m.SkippedRows),
		zap.Int("groups", m.Groups),
		zap.Int("documentsWritten", m.DocumentsWritten),
		zap.Int("divergentFields", m.DivergentFields),
		zap.String("duration", formatDuration(m.Duration())),
		zap.Float64("throughput", m.CalculateThroughput()),
	}
	if err != nil {
		m.logger.Error("Load aborted", append(fields, zap.Error(err))...)
		return
	}
	m.logger.Info("Load completed", fields...)
}

// Duration returns the total duration of the run
func (m *LoadMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// CalculateThroughput calculates the documents/second throughput
func (m *LoadMetrics) CalculateThroughput() float64 {
	seconds := m.Duration().Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(m.DocumentsWritten) / seconds
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// ToJSON serializes metrics to JSON
func (m *LoadMetrics) ToJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID            string  `json:"runId"`
		Collection       string  `json:"collection"`
		Duration         string  `json:"duration"`
		RowsRead         int     `json:"rowsRead"`
		SkippedRows      int     `json:"skippedRows"`
		Groups           int     `json:"groups"`
		DocumentsWritten int     `json:"documentsWritten"`
		DivergentFields  int     `json:"divergentFields"`
		Failed           bool    `json:"failed"`
		Throughput       float64 `json:"throughput"`
	}{
		RunID:            m.RunID,
		Collection:       m.Collection,
		Duration:         formatDuration(m.Duration()),
		RowsRead:         m.RowsRead,
		SkippedRows:      m.SkippedRows,
		Groups:           m.Groups,
		DocumentsWritten: m.DocumentsWritten,
		DivergentFields:  m.DivergentFields,
		Failed:           m.Failed,
		Throughput:       m.CalculateThroughput(),
	})
}

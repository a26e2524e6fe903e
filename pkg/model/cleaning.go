package model

import (
	"time"
)

// Shape is a row/column count pair
type Shape struct {
	Rows    int
	Columns int
}

// ShapeOf returns the current shape of a table
func ShapeOf(t *Table) Shape {
	return Shape{Rows: t.NumRows(), Columns: t.NumColumns()}
}

// Counter is one named outcome recorded by a cleaning stage
type Counter struct {
	Name  string
	Value interface{}
}

// StageResult represents the outcome of a single cleaning stage
type StageResult struct {
	Name     string    // Human readable stage name
	Counters []Counter // Stage specific counters, in recording order
	Details  []string  // Free-form lines (dropped columns, fill strategies)
}

// Add records a counter on the stage
func (s *StageResult) Add(name string, value interface{}) {
	s.Counters = append(s.Counters, Counter{Name: name, Value: value})
}

// Detail records a detail line on the stage
func (s *StageResult) Detail(line string) {
	s.Details = append(s.Details, line)
}

// Counter returns the value recorded under name, or nil
func (s *StageResult) Counter(name string) interface{} {
	for _, c := range s.Counters {
		if c.Name == name {
			return c.Value
		}
	}
	return nil
}

// ColumnNulls is the null count of one column
type ColumnNulls struct {
	Name    string
	Nulls   int
	Percent float64
}

// FinalAnalysis describes the cleaned table
type FinalAnalysis struct {
	Rows                int
	Columns             int
	ColumnsWithNulls    int
	ColumnsWithoutNulls int
	TotalNulls          int
	TopNullColumns      []ColumnNulls // At most ten, by null count descending
}

// CleaningReport is accumulated across stages and serialized once at the end
type CleaningReport struct {
	RunID     string
	Timestamp time.Time
	Original  Shape
	Stages    []StageResult
	Final     Shape
	Analysis  FinalAnalysis
}

// NewCleaningReport starts a report for a table of the given shape
func NewCleaningReport(runID string, ts time.Time, original Shape) *CleaningReport {
	return &CleaningReport{
		RunID:     runID,
		Timestamp: ts,
		Original:  original,
		Stages:    make([]StageResult, 0, 5),
	}
}

// AddStage appends a completed stage result
func (r *CleaningReport) AddStage(stage StageResult) {
	r.Stages = append(r.Stages, stage)
}

// Stage returns the stage with the given name, or nil
func (r *CleaningReport) Stage(name string) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// RowsRemoved returns how many rows the run dropped
func (r *CleaningReport) RowsRemoved() int {
	return r.Original.Rows - r.Final.Rows
}

// ColumnsRemoved returns how many columns the run dropped
func (r *CleaningReport) ColumnsRemoved() int {
	return r.Original.Columns - r.Final.Columns
}

// RowsRemovedPercent returns the share of rows dropped, 0 for an empty input
func (r *CleaningReport) RowsRemovedPercent() float64 {
	return percentOf(r.RowsRemoved(), r.Original.Rows)
}

// ColumnsRemovedPercent returns the share of columns dropped, 0 for an empty input
func (r *CleaningReport) ColumnsRemovedPercent() float64 {
	return percentOf(r.ColumnsRemoved(), r.Original.Columns)
}

func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

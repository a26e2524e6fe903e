package converter

import (
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// TypeConverter declares column kinds and converts cells for documents
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Raw field values read as null, compared verbatim
	NullTokens []string
}

// DefaultConfig returns the default configuration: only empty fields are null
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		NullTokens: []string{""},
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(config.NullTokens) == 0 {
		config.NullTokens = DefaultConfig().NullTokens
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// IsNullToken reports whether a raw field value should be read as null
func (c *TypeConverter) IsNullToken(raw string) bool {
	for _, token := range c.config.NullTokens {
		if raw == token {
			return true
		}
	}
	return false
}

// DeclareKinds infers and sets the kind of every column of t, once
func (c *TypeConverter) DeclareKinds(t *model.Table) {
	numeric := 0
	for i := range t.Columns {
		t.Columns[i].Kind = InferKind(columnCells(t, i))
		if t.Columns[i].Kind == model.KindNumeric {
			numeric++
		}
	}

	c.logger.Debug("Declared column kinds",
		zap.Int("columns", len(t.Columns)),
		zap.Int("numeric", numeric),
		zap.Int("text", len(t.Columns)-numeric))
}

// Subtypes returns the diagnostic subtype of every column, in column order
func (c *TypeConverter) Subtypes(t *model.Table) []Subtype {
	out := make([]Subtype, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = DetectSubtype(col.Kind, columnCells(t, i))
	}
	return out
}

package dataprocessing

import (
	"log/slog"

	"festivalpulse/pkg/contracts/domain"
)

// ValidateSchema checks that every required column is present in the table's
// header row. It returns a *SchemaError naming exactly the missing columns,
// in the canonical required-column order, or nil when the schema is complete.
// The check is purely referentially transparent over its input.
func ValidateSchema(table *RawTable) error {
	var missing []string
	for _, col := range domain.RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		slog.Warn("schema validation failed", slog.Any("missing_columns", missing))
		return &SchemaError{Missing: missing}
	}
	return nil
}

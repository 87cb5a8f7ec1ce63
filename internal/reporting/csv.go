package reporting

import (
	"encoding/csv"
	"strings"

	"timeframe-chart/internal/domain"
)

// RenderCSV renders a series as timestamp,value CSV.
func RenderCSV(series domain.Series) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	_ = w.Write([]string{"timestamp", "value"})

	// Rows
	for _, s := range series {
		_ = w.Write([]string{s.Timestamp, domain.FormatValue(s.Value)})
	}
	w.Flush()

	return sb.String()
}

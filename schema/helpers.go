package schema

import (
	"fmt"
	"strings"
)

func errMissingColumn(column string, r MeasureRecord) error {
	return fmt.Errorf("measure %s for %s has no %s", r.MetricKey, r.ComponentKey, column)
}

func errUnknownValueType(t ValueType) error {
	return fmt.Errorf("unknown value type '%s'", t)
}

// FormatSeverityCounts renders per-severity counts as "BLOCKER=n;CRITICAL=n;...".
// Severities absent from counts are written as zero.
func FormatSeverityCounts(counts map[Severity]int) string {
	parts := make([]string, 0, len(AllSeverities))
	for _, sev := range AllSeverities {
		parts = append(parts, fmt.Sprintf("%s=%d", sev, counts[sev]))
	}
	return strings.Join(parts, ";")
}

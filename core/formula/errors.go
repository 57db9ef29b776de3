package formula

import (
	"errors"
	"fmt"
)

// Engine and context errors.
var (
	ErrDuplicateMetric      = errors.New("duplicate metric")
	ErrCyclicDependency     = errors.New("cyclic dependency between formulas")
	ErrMeasureAlreadySet    = errors.New("measure already set")
	ErrValueKindMismatch    = errors.New("value kind does not match metric type")
	ErrMetricAbsent         = errors.New("metric has no value")
	ErrUndeclaredDependency = errors.New("metric is not a declared dependency")
	ErrInvalidRatingGrid    = errors.New("invalid rating grid")
	ErrUnknownMetric        = errors.New("unknown metric")
)

// FormulaError records the failure of a single formula during evaluation.
type FormulaError struct {
	Metric string
	Err    error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula %s: %v", e.Metric, e.Err)
}

func (e *FormulaError) Unwrap() error {
	return e.Err
}

func isAbsent(err error) bool {
	return errors.Is(err, ErrMetricAbsent)
}

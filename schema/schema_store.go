package schema

import "time"

// RunRecord represents a row from the livemeasure_runs table.
type RunRecord struct {
	RunID           int64
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	TotalComponents int32
	ConfigParams    *string
}

// MeasureRecord represents a row from the livemeasure_measures table.
type MeasureRecord struct {
	RunID        int64
	ComponentKey string
	MetricKey    string
	ValueType    ValueType
	NumValue     *float64
	TextValue    *string
	RecordedAt   time.Time
}

// Value converts the stored columns back into a metric value.
func (r MeasureRecord) Value() (Value, error) {
	switch r.ValueType {
	case FloatType:
		if r.NumValue == nil {
			return Value{}, errMissingColumn("num_value", r)
		}
		return FloatValue(*r.NumValue), nil
	case RatingType:
		if r.NumValue == nil {
			return Value{}, errMissingColumn("num_value", r)
		}
		rating, err := RatingByIndex(int(*r.NumValue))
		if err != nil {
			return Value{}, err
		}
		return RatingValue(rating), nil
	case StringType:
		if r.TextValue == nil {
			return Value{}, errMissingColumn("text_value", r)
		}
		return StringValue(*r.TextValue), nil
	default:
		return Value{}, errUnknownValueType(r.ValueType)
	}
}

// NewMeasureRecord flattens a measure into its stored columns.
func NewMeasureRecord(runID int64, component string, m Measure, at time.Time) MeasureRecord {
	rec := MeasureRecord{
		RunID:        runID,
		ComponentKey: component,
		MetricKey:    m.Metric,
		ValueType:    m.Value.Type,
		RecordedAt:   at,
	}
	switch m.Value.Type {
	case StringType:
		text := m.Value.Text
		rec.TextValue = &text
	default:
		num, _ := m.Value.Float()
		rec.NumValue = &num
	}
	return rec
}

// StoreStatus holds status information about the measure store.
type StoreStatus struct {
	Backend         string
	Connected       bool
	TotalRuns       int
	LastRunID       int64
	LastRunTime     time.Time
	OldestRunTime   time.Time
	TotalComponents int
	TableSizes      map[string]int64
}

package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Metric describes a single measurable quantity.
type Metric struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Type        ValueType `json:"type"`
	Domain      string    `json:"domain"`
	Description string    `json:"description,omitempty"`
}

// Value is the computed value of a metric: a number, a rating, or a string.
type Value struct {
	Type   ValueType
	Num    float64
	Rating Rating
	Text   string
}

// FloatValue wraps a number.
func FloatValue(f float64) Value {
	return Value{Type: FloatType, Num: f}
}

// RatingValue wraps a rating.
func RatingValue(r Rating) Value {
	return Value{Type: RatingType, Rating: r}
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{Type: StringType, Text: s}
}

// Float returns the numeric view of the value. Ratings read as their index.
func (v Value) Float() (float64, bool) {
	switch v.Type {
	case FloatType:
		return v.Num, true
	case RatingType:
		return float64(v.Rating.Index()), true
	default:
		return 0, false
	}
}

// Format renders the value for display with the given float precision.
func (v Value) Format(precision int) string {
	switch v.Type {
	case FloatType:
		return strconv.FormatFloat(v.Num, 'f', precision, 64)
	case RatingType:
		return v.Rating.String()
	default:
		return v.Text
	}
}

// String renders the value using the shortest float representation.
func (v Value) String() string {
	return v.Format(-1)
}

// MarshalJSON encodes numbers as numbers, ratings as letters, and text as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case FloatType:
		return json.Marshal(v.Num)
	case RatingType:
		return json.Marshal(v.Rating.String())
	case StringType:
		return json.Marshal(v.Text)
	default:
		return nil, fmt.Errorf("unknown value type '%s'", v.Type)
	}
}

// Measure pairs a metric key with its value.
type Measure struct {
	Metric string `json:"metric"`
	Value  Value  `json:"value"`
}

package outwriter

import (
	"time"

	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
)

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:       output,
		Precision:    1,
		Width:        200,
		Workers:      2,
		StoreBackend: schema.NoneBackend,
	}
}

func testCatalog() []schema.Metric {
	return []schema.Metric{
		{Key: "bugs", Name: "Bugs", Type: schema.FloatType, Domain: "Reliability"},
		{Key: "sqale_rating", Name: "Maintainability Rating", Type: schema.RatingType, Domain: "Maintainability"},
		{Key: "violations_severity_distribution", Name: "Issues Severity Distribution", Type: schema.StringType, Domain: "Issues"},
	}
}

func testResult() *schema.ComputeResult {
	return &schema.ComputeResult{
		RunID:    7,
		Duration: 1500 * time.Millisecond,
		Components: []schema.ComponentMeasures{
			{
				Component: "app:core",
				Measures: []schema.Measure{
					{Metric: "bugs", Value: schema.FloatValue(3)},
					{Metric: "sqale_rating", Value: schema.RatingValue(schema.RatingB)},
					{Metric: "violations_severity_distribution", Value: schema.StringValue("BLOCKER=0;CRITICAL=1;MAJOR=2;MINOR=0;INFO=0")},
				},
			},
			{
				Component: "app:web",
				Measures: []schema.Measure{
					{Metric: "bugs", Value: schema.FloatValue(0.25)},
				},
				Failures: map[string]string{"sqale_rating": "negative density"},
			},
		},
	}
}

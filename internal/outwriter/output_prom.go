package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/livemeasure/schema"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// promPrefix namespaces every exported metric family.
const promPrefix = "livemeasure_"

// buildMetricFamilies groups measures into one gauge family per metric, labeled by component.
// Ratings export their index. String measures have no numeric form and are skipped.
func buildMetricFamilies(result *schema.ComputeResult, catalog []schema.Metric) []*dto.MetricFamily {
	byKey := indexMetrics(catalog)
	families := make(map[string]*dto.MetricFamily)
	var order []string

	for _, cm := range result.Components {
		for _, m := range cm.Measures {
			v, ok := m.Value.Float()
			if !ok {
				continue
			}
			mf, ok := families[m.Metric]
			if !ok {
				help := m.Metric
				if meta, found := byKey[m.Metric]; found && meta.Name != "" {
					help = meta.Name
				}
				mf = &dto.MetricFamily{
					Name: proto.String(promPrefix + m.Metric),
					Help: proto.String(help),
					Type: dto.MetricType_GAUGE.Enum(),
				}
				families[m.Metric] = mf
				order = append(order, m.Metric)
			}
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label: []*dto.LabelPair{{
					Name:  proto.String("component"),
					Value: proto.String(cm.Component),
				}},
				Gauge: &dto.Gauge{Value: proto.Float64(v)},
			})
		}
	}

	out := make([]*dto.MetricFamily, 0, len(order))
	for _, key := range order {
		out = append(out, families[key])
	}
	return out
}

// writeMeasuresProm writes the measures in the Prometheus text exposition format.
func writeMeasuresProm(w io.Writer, result *schema.ComputeResult, catalog []schema.Metric) error {
	for _, mf := range buildMetricFamilies(result, catalog) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

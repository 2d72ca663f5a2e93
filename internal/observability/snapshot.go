package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Snapshot renders the counters and histograms gathered from g as log
// fields, for processes that exit before anything scrapes them. Labelled
// series are keyed name.value1.value2; histograms contribute _count and
// _sum fields.
func Snapshot(g prometheus.Gatherer) ([]zap.Field, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	var fields []zap.Field
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				values := make([]string, len(labels))
				for i, l := range labels {
					values[i] = l.GetValue()
				}
				key += "." + strings.Join(values, ".")
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64(key, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fields = append(fields,
					zap.Uint64(key+"_count", h.GetSampleCount()),
					zap.Float64(key+"_sum", h.GetSampleSum()),
				)
			}
		}
	}
	return fields, nil
}

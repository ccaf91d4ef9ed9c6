// Package metrics records conversion counts and latencies with Prometheus.
package metrics

import (
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tomapper/convert"
	"tomapper/maperr"
	"tomapper/options"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector is an interceptor observing every conversion it wraps,
// nested conversions included.
type Collector struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewCollector creates the collectors under namespace, "tomapper" when
// empty. Register them with Register or MustRegister.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "tomapper"
	}

	return &Collector{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Number of object conversions by direction, transfer type and outcome",
			},
			[]string{"direction", "type", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Object conversion latency by direction and transfer type",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"direction", "type"},
		),
	}
}

// FromConfig creates the collectors under the configured metrics.namespace.
func FromConfig(cfg options.Config) *Collector {
	return NewCollector(cfg.Metrics.Namespace)
}

var (
	_ convert.Interceptor  = (*Collector)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.conversions.Describe(ch)
	c.duration.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.conversions.Collect(ch)
	c.duration.Collect(ch)
}

// Register adds the collector to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if err := reg.Register(c); err != nil {
		return maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
			Detail("registering conversion metrics").
			Cause(err).
			Build()
	}

	return nil
}

func (c *Collector) Intercept(src, dst any, dir convert.Direction, tags []string, next convert.Chain) (any, error) {
	start := time.Now()

	res, err := next(src, dst, dir, tags)

	typ := transferName(src, dst, dir)
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}

	c.conversions.WithLabelValues(dir.String(), typ, outcome).Inc()
	c.duration.WithLabelValues(dir.String(), typ).Observe(time.Since(start).Seconds())

	return res, err
}

func transferName(src, dst any, dir convert.Direction) string {
	obj := dst
	if dir == convert.DirectionToDomain {
		obj = src
	}

	t := reflect.TypeOf(obj)
	if t == nil {
		return "unknown"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.String()
}

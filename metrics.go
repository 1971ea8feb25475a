package slottimer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports the state of a Scheduler as Prometheus metrics.
type Collector struct {
	s *Scheduler

	active   *prometheus.Desc
	capacity *prometheus.Desc
	fired    *prometheus.Desc
	expired  *prometheus.Desc
	rejected *prometheus.Desc
	panics   *prometheus.Desc
}

// NewCollector creates a collector for s. Every metric carries the
// constant labels given in labels, which may be nil.
func NewCollector(s *Scheduler, namespace string, labels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "slottimer", name), help, nil, labels)
	}
	return &Collector{
		s:        s,
		active:   desc("active_timers", "Number of occupied timer slots."),
		capacity: desc("capacity", "Number of timer slots."),
		fired:    desc("fired_total", "Timer callbacks invoked."),
		expired:  desc("expired_total", "Timers freed after their last run."),
		rejected: desc("rejected_total", "Timer registrations refused."),
		panics:   desc("panics_total", "Timer callbacks that panicked."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.capacity
	ch <- c.fired
	ch <- c.expired
	ch <- c.rejected
	ch <- c.panics
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.s.Stats()
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(c.s.ActiveCount()))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(c.s.Capacity()))
	ch <- prometheus.MustNewConstMetric(c.fired, prometheus.CounterValue, float64(st.Fired))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(st.Expired))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(st.Rejected))
	ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(st.Panics))
}

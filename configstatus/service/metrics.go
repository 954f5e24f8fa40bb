package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fatihboy/smarthome/metric"
)

const metricsOwner = "status_service"

// serviceMetrics holds the service-level Prometheus metrics
type serviceMetrics struct {
	lookups         prometheus.Counter
	lookupMisses    prometheus.Counter
	messagesDropped prometheus.Counter
	eventsPublished prometheus.Counter
	signalsDropped  prometheus.Counter
}

func newServiceMetrics(registry *metric.MetricsRegistry) *serviceMetrics {
	m := &serviceMetrics{
		lookups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configstatus_lookups_total",
			Help: "Total config status lookups",
		}),
		lookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configstatus_lookup_misses_total",
			Help: "Lookups with no supporting provider",
		}),
		messagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configstatus_messages_dropped_total",
			Help: "Status messages dropped due to unresolvable translation keys",
		}),
		eventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configstatus_events_published_total",
			Help: "Config status events published to the event sink",
		}),
		signalsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configstatus_signals_dropped_total",
			Help: "Change signals dropped because the notification queue was unavailable",
		}),
	}

	_ = registry.RegisterCounter(metricsOwner, "configstatus_lookups_total", m.lookups)
	_ = registry.RegisterCounter(metricsOwner, "configstatus_lookup_misses_total", m.lookupMisses)
	_ = registry.RegisterCounter(metricsOwner, "configstatus_messages_dropped_total", m.messagesDropped)
	_ = registry.RegisterCounter(metricsOwner, "configstatus_events_published_total", m.eventsPublished)
	_ = registry.RegisterCounter(metricsOwner, "configstatus_signals_dropped_total", m.signalsDropped)

	return m
}

// Package service provides the config status orchestrator. It matches an
// entity to its owning provider, collects and translates the provider's raw
// status messages, and republishes recomputed status as an event when a
// provider signals a configuration change.
package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	"github.com/fatihboy/smarthome/configstatus"
	"github.com/fatihboy/smarthome/configstatus/eventsink"
	"github.com/fatihboy/smarthome/configstatus/registry"
	"github.com/fatihboy/smarthome/configstatus/translation"
	"github.com/fatihboy/smarthome/errors"
	"github.com/fatihboy/smarthome/metric"
	"github.com/fatihboy/smarthome/pkg/worker"
)

// Service aggregates config status information from the registered providers.
//
// Service implements configstatus.Callback: providers invoke NotifyChanged
// through the binding established on registration, and the recomputed status
// is published asynchronously through the event sink.
//
// The translation resolver and event sink are swappable dependencies with an
// external lifecycle; both may be absent at any point. They are held behind
// atomic references so concurrent wiring and unwiring never corrupts an
// in-flight lookup, only degrades it to "unavailable".
type Service struct {
	registry      *registry.Registry
	logger        *slog.Logger
	defaultLocale language.Tag

	resolver atomic.Pointer[translation.Resolver]
	sink     atomic.Pointer[eventsink.Sink]

	pool    *worker.Pool[configstatus.ChangeSignal]
	metrics *serviceMetrics

	workers         int
	queueSize       int
	metricsRegistry *metric.MetricsRegistry
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultLocale sets the locale used when a lookup does not request one.
// The async recomputation path always uses this locale.
func WithDefaultLocale(locale language.Tag) Option {
	return func(s *Service) {
		s.defaultLocale = locale
	}
}

// WithWorkers sets the number of background workers for change notifications
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// WithQueueSize sets the change-notification queue capacity
func WithQueueSize(n int) Option {
	return func(s *Service) {
		s.queueSize = n
	}
}

// WithMetricsRegistry enables Prometheus metrics on the given registry
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(s *Service) {
		s.metricsRegistry = registry
	}
}

// New creates a status service over the given provider registry and binds
// itself as the change-notification callback for all providers the registry
// hands out.
func New(reg *registry.Registry, opts ...Option) *Service {
	s := &Service{
		registry:      reg,
		logger:        slog.Default(),
		defaultLocale: language.English,
		workers:       4,
		queueSize:     256,
	}

	for _, opt := range opts {
		opt(s)
	}

	var poolOpts []worker.Option[configstatus.ChangeSignal]
	if s.metricsRegistry != nil {
		s.metrics = newServiceMetrics(s.metricsRegistry)
		poolOpts = append(poolOpts,
			worker.WithMetricsRegistry[configstatus.ChangeSignal](s.metricsRegistry, "configstatus_notify"))
	}
	s.pool = worker.NewPool(s.workers, s.queueSize, s.processSignal, poolOpts...)

	reg.BindCallback(s)

	return s
}

// Start launches the background notification workers
func (s *Service) Start(ctx context.Context) error {
	if err := s.pool.Start(ctx); err != nil {
		return errors.Wrap(err, "Service", "Start", "worker pool start")
	}
	return nil
}

// Stop drains pending change notifications and stops the workers
func (s *Service) Stop(timeout time.Duration) error {
	if err := s.pool.Stop(timeout); err != nil {
		return errors.Wrap(err, "Service", "Stop", "worker pool stop")
	}
	return nil
}

// SetTranslationResolver wires the translation resolver. Setting the same
// resolver twice is harmless.
func (s *Service) SetTranslationResolver(resolver translation.Resolver) {
	if resolver == nil {
		return
	}
	s.resolver.Store(&resolver)
}

// UnsetTranslationResolver removes the translation resolver
func (s *Service) UnsetTranslationResolver() {
	s.resolver.Store(nil)
}

// SetEventSink wires the event sink used by the async notification path
func (s *Service) SetEventSink(sink eventsink.Sink) {
	if sink == nil {
		return
	}
	s.sink.Store(&sink)
}

// UnsetEventSink removes the event sink
func (s *Service) UnsetEventSink() {
	s.sink.Store(nil)
}

// ConfigStatus retrieves the status info for the entity from the first
// registered provider that supports it.
//
// A nil locale falls back to the service's default locale. The returned info
// is nil (with a nil error) when no provider supports the entity or the
// matching provider failed to produce a status collection; both are normal
// outcomes, not errors. An empty entity id violates the caller contract and
// is the only error path.
func (s *Service) ConfigStatus(entityID string, locale *language.Tag) (*configstatus.Info, error) {
	if entityID == "" {
		return nil, errors.WrapInvalid(errors.ErrEmptyEntityID, "Service", "ConfigStatus", "entity id validation")
	}

	loc := s.defaultLocale
	if locale != nil {
		loc = *locale
	}

	if s.metrics != nil {
		s.metrics.lookups.Inc()
	}

	for _, provider := range s.registry.Snapshot() {
		if provider.SupportsEntity(entityID) {
			return s.configStatusFrom(provider, entityID, loc), nil
		}
	}

	s.logger.Debug("No config status provider for entity", "entity_id", entityID)
	if s.metrics != nil {
		s.metrics.lookupMisses.Inc()
	}
	return nil, nil
}

// NotifyChanged implements configstatus.Callback. It hands the recomputation
// off to the background workers and returns immediately; the signal is
// dropped with a warning if the queue is full or the workers are not
// running.
func (s *Service) NotifyChanged(signal configstatus.ChangeSignal) {
	if err := s.pool.Submit(signal); err != nil {
		s.logger.Warn("Dropping config status change signal",
			"entity_id", signal.EntityID, "error", err)
		if s.metrics != nil {
			s.metrics.signalsDropped.Inc()
		}
	}
}

// processSignal recomputes the status for a change signal on a background
// worker and publishes the result. Recomputation uses the default locale;
// callers of the async path cannot request one.
func (s *Service) processSignal(_ context.Context, signal configstatus.ChangeSignal) error {
	info, err := s.ConfigStatus(signal.EntityID, nil)
	if err != nil {
		s.logger.Warn("Config status recomputation failed",
			"entity_id", signal.EntityID, "error", err)
		return err
	}
	if info == nil {
		// Absent result: nothing to publish
		return nil
	}

	sinkRef := s.sink.Load()
	if sinkRef == nil {
		s.logger.Warn("Event sink not available, cannot publish config status",
			"entity_id", signal.EntityID)
		return errors.WrapTransient(errors.ErrSinkUnavailable, "Service", "processSignal", "event sink lookup")
	}

	if err := (*sinkRef).Publish(signal.Topic(), info); err != nil {
		s.logger.Warn("Config status event publication failed",
			"entity_id", signal.EntityID, "topic", signal.Topic(), "error", err)
		return err
	}

	if s.metrics != nil {
		s.metrics.eventsPublished.Inc()
	}
	return nil
}

// configStatusFrom shapes the raw status of the matching provider: messages
// with a key are translated within the provider's namespace and dropped when
// no translation resolves; keyless messages pass through untouched. Message
// order is preserved.
func (s *Service) configStatusFrom(
	provider configstatus.Provider, entityID string, locale language.Tag,
) *configstatus.Info {
	raw := provider.ConfigStatus()
	if raw == nil {
		s.logger.Debug("Provider returned no config status collection",
			"entity_id", entityID, "namespace", provider.Namespace())
		return nil
	}

	info := configstatus.NewInfo()

	for _, msg := range raw {
		if msg.MessageKey == "" {
			info.Add(msg)
			continue
		}

		text, ok := s.resolveText(provider.Namespace(), msg, locale)
		if !ok {
			s.logger.Warn("No translation found for config status message, ignoring it",
				"key", msg.MessageKey, "namespace", provider.Namespace(), "entity_id", entityID)
			if s.metrics != nil {
				s.metrics.messagesDropped.Inc()
			}
			continue
		}
		info.Add(msg.Translated(text))
	}

	return info
}

// resolveText resolves a message key through the current translation
// resolver. An absent resolver behaves like an unresolvable key.
func (s *Service) resolveText(namespace string, msg configstatus.Message, locale language.Tag) (string, bool) {
	resolverRef := s.resolver.Load()
	if resolverRef == nil {
		return "", false
	}
	return (*resolverRef).Resolve(namespace, msg.MessageKey, "", locale, msg.Arguments...)
}

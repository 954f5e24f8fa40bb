package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/fatihboy/smarthome/configstatus"
	"github.com/fatihboy/smarthome/configstatus/registry"
	"github.com/fatihboy/smarthome/configstatus/translation"
	"github.com/fatihboy/smarthome/errors"
)

var _ configstatus.Provider = (*mockProvider)(nil)
var _ translation.Resolver = (*mockResolver)(nil)

// mockProvider implements configstatus.Provider with pluggable behavior
type mockProvider struct {
	namespace string
	supports  func(entityID string) bool
	status    func() []configstatus.Message

	mu       sync.Mutex
	callback configstatus.Callback
}

func (p *mockProvider) SupportsEntity(entityID string) bool {
	if p.supports == nil {
		return false
	}
	return p.supports(entityID)
}

func (p *mockProvider) ConfigStatus() []configstatus.Message {
	if p.status == nil {
		return nil
	}
	return p.status()
}

func (p *mockProvider) Namespace() string { return p.namespace }

func (p *mockProvider) SetCallback(cb configstatus.Callback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = cb
}

func (p *mockProvider) notify(entityID string) {
	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	if cb != nil {
		cb.NotifyChanged(configstatus.ChangeSignal{EntityID: entityID})
	}
}

// mockResolver implements translation.Resolver and records resolution calls
type mockResolver struct {
	mu           sync.Mutex
	translations map[string]string // namespace + "/" + key -> template
	lastLocale   language.Tag
}

func newMockResolver() *mockResolver {
	return &mockResolver{translations: make(map[string]string)}
}

func (r *mockResolver) add(namespace, key, template string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translations[namespace+"/"+key] = template
}

func (r *mockResolver) Resolve(
	namespace, key, defaultText string, locale language.Tag, args ...any,
) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLocale = locale

	template, ok := r.translations[namespace+"/"+key]
	if !ok {
		if defaultText == "" {
			return "", false
		}
		template = defaultText
	}
	if len(args) == 0 {
		return template, true
	}
	return fmt.Sprintf(template, args...), true
}

func (r *mockResolver) locale() language.Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastLocale
}

// mockSink records publishes and signals each one on a channel
type mockSink struct {
	mu        sync.Mutex
	published []publishedEvent
	signal    chan struct{}
}

type publishedEvent struct {
	topic string
	info  *configstatus.Info
}

func newMockSink() *mockSink {
	return &mockSink{signal: make(chan struct{}, 16)}
}

func (s *mockSink) Publish(topic string, info *configstatus.Info) error {
	s.mu.Lock()
	s.published = append(s.published, publishedEvent{topic: topic, info: info})
	s.mu.Unlock()
	s.signal <- struct{}{}
	return nil
}

func (s *mockSink) events() []publishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]publishedEvent, len(s.published))
	copy(out, s.published)
	return out
}

func (s *mockSink) waitForPublish(t *testing.T) {
	t.Helper()
	select {
	case <-s.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event publication")
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	svc := New(reg, opts...)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop(2 * time.Second) })
	return svc, reg
}

func singleMessageProvider(namespace, entityID string) *mockProvider {
	return &mockProvider{
		namespace: namespace,
		supports:  func(id string) bool { return id == entityID },
		status: func() []configstatus.Message {
			return []configstatus.Message{
				configstatus.NewMessage("host", configstatus.SeverityError, "k1", "x"),
			}
		},
	}
}

func TestConfigStatusEmptyEntityID(t *testing.T) {
	svc, _ := newTestService(t)

	for _, locale := range []*language.Tag{nil, &language.German} {
		info, err := svc.ConfigStatus("", locale)
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
		assert.Nil(t, info)
	}
}

func TestConfigStatusNoProvider(t *testing.T) {
	svc, _ := newTestService(t)

	info, err := svc.ConfigStatus("unknown-entity", nil)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestConfigStatusTranslatesMessage(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("hue", "k1", "bad value: %s")

	svc, reg := newTestService(t)
	svc.SetTranslationResolver(resolver)
	reg.Add(singleMessageProvider("hue", "dev1"))

	info, err := svc.ConfigStatus("dev1", &language.English)
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, 1, info.Len())

	msg := info.Messages()[0]
	assert.Equal(t, "host", msg.ParameterName)
	assert.Equal(t, configstatus.SeverityError, msg.Severity)
	assert.Equal(t, "bad value: x", msg.Text)
	assert.Empty(t, msg.MessageKey)
}

func TestConfigStatusDropsUnresolvableKey(t *testing.T) {
	svc, reg := newTestService(t)
	svc.SetTranslationResolver(newMockResolver())
	reg.Add(singleMessageProvider("hue", "dev1"))

	// Provider answered validly, so the result is present but empty
	info, err := svc.ConfigStatus("dev1", &language.English)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 0, info.Len())
}

func TestConfigStatusSiblingsSurviveDroppedMessage(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("hue", "good-key", "resolved: %s")

	code := 7
	provider := &mockProvider{
		namespace: "hue",
		supports:  func(id string) bool { return id == "dev1" },
		status: func() []configstatus.Message {
			return []configstatus.Message{
				configstatus.NewMessage("a", configstatus.SeverityWarning, "good-key", "first"),
				configstatus.NewMessage("b", configstatus.SeverityError, "bad-key"),
				{ParameterName: "c", Severity: configstatus.SeverityPending, StatusCode: &code},
			}
		},
	}

	svc, reg := newTestService(t)
	svc.SetTranslationResolver(resolver)
	reg.Add(provider)

	info, err := svc.ConfigStatus("dev1", &language.English)
	require.NoError(t, err)
	require.NotNil(t, info)

	msgs := info.Messages()
	require.Len(t, msgs, 2)

	// Order preserved, dropped message absent
	assert.Equal(t, "a", msgs[0].ParameterName)
	assert.Equal(t, "resolved: first", msgs[0].Text)

	// Keyless message passes through verbatim
	assert.Equal(t, "c", msgs[1].ParameterName)
	assert.Equal(t, configstatus.SeverityPending, msgs[1].Severity)
	require.NotNil(t, msgs[1].StatusCode)
	assert.Equal(t, 7, *msgs[1].StatusCode)
	assert.Empty(t, msgs[1].Text)
}

func TestConfigStatusFirstMatchWins(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("first", "k1", "from first")
	resolver.add("second", "k1", "from second")

	svc, reg := newTestService(t)
	svc.SetTranslationResolver(resolver)
	reg.Add(singleMessageProvider("first", "dev1"))
	reg.Add(singleMessageProvider("second", "dev1"))

	for i := 0; i < 5; i++ {
		info, err := svc.ConfigStatus("dev1", nil)
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Equal(t, 1, info.Len())
		assert.Equal(t, "from first", info.Messages()[0].Text)
	}
}

func TestConfigStatusProviderFailure(t *testing.T) {
	provider := &mockProvider{
		namespace: "hue",
		supports:  func(string) bool { return true },
		status:    func() []configstatus.Message { return nil },
	}

	svc, reg := newTestService(t)
	reg.Add(provider)

	// nil collection is a provider failure: absent result, not an error
	info, err := svc.ConfigStatus("dev1", nil)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestConfigStatusEmptyCollection(t *testing.T) {
	provider := &mockProvider{
		namespace: "hue",
		supports:  func(string) bool { return true },
		status:    func() []configstatus.Message { return []configstatus.Message{} },
	}

	svc, reg := newTestService(t)
	reg.Add(provider)

	// Empty collection is a valid answer: present, empty info
	info, err := svc.ConfigStatus("dev1", nil)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 0, info.Len())
}

func TestConfigStatusResolverAbsent(t *testing.T) {
	svc, reg := newTestService(t)
	reg.Add(singleMessageProvider("hue", "dev1"))

	// No resolver wired: keyed messages behave as unresolvable
	info, err := svc.ConfigStatus("dev1", nil)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 0, info.Len())
}

func TestConfigStatusLocaleDefaulting(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("hue", "k1", "bad value: %s")

	svc, reg := newTestService(t, WithDefaultLocale(language.German))
	svc.SetTranslationResolver(resolver)
	reg.Add(singleMessageProvider("hue", "dev1"))

	_, err := svc.ConfigStatus("dev1", nil)
	require.NoError(t, err)
	assert.Equal(t, language.German, resolver.locale())

	_, err = svc.ConfigStatus("dev1", &language.French)
	require.NoError(t, err)
	assert.Equal(t, language.French, resolver.locale())
}

func TestNotifyChangedReturnsBeforeRecomputation(t *testing.T) {
	release := make(chan struct{})
	provider := &mockProvider{
		namespace: "hue",
		supports:  func(string) bool { return true },
		status: func() []configstatus.Message {
			<-release
			return []configstatus.Message{}
		},
	}

	_, reg := newTestService(t)
	reg.Add(provider)

	done := make(chan struct{})
	go func() {
		provider.notify("dev1")
		close(done)
	}()

	select {
	case <-done:
		// NotifyChanged returned while the provider is still blocked
	case <-time.After(time.Second):
		t.Fatal("NotifyChanged blocked on recomputation")
	}
	close(release)
}

func TestNotifyChangedPublishesStatus(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("hue", "k1", "bad value: %s")
	sink := newMockSink()

	svc, reg := newTestService(t)
	svc.SetTranslationResolver(resolver)
	svc.SetEventSink(sink)

	provider := singleMessageProvider("hue", "dev1")
	reg.Add(provider)

	provider.notify("dev1")
	sink.waitForPublish(t)

	events := sink.events()
	require.Len(t, events, 1)
	assert.Equal(t, "smarthome/configstatus/dev1/status", events[0].topic)
	require.Equal(t, 1, events[0].info.Len())
	assert.Equal(t, "bad value: x", events[0].info.Messages()[0].Text)
}

func TestNotifyChangedPublishesEmptyStatus(t *testing.T) {
	sink := newMockSink()
	provider := &mockProvider{
		namespace: "hue",
		supports:  func(string) bool { return true },
		status:    func() []configstatus.Message { return []configstatus.Message{} },
	}

	svc, reg := newTestService(t)
	svc.SetEventSink(sink)
	reg.Add(provider)

	// Present-but-empty info is still published
	provider.notify("dev1")
	sink.waitForPublish(t)

	events := sink.events()
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].info.Len())
}

func TestNotifyChangedAbsentStatusNotPublished(t *testing.T) {
	sink := newMockSink()
	provider := &mockProvider{
		namespace: "hue",
		supports:  func(string) bool { return true },
		status:    func() []configstatus.Message { return nil },
	}

	svc, reg := newTestService(t)
	svc.SetEventSink(sink)
	reg.Add(provider)

	provider.notify("dev1")

	// Drain the pool to be sure the recomputation finished
	require.NoError(t, svc.Stop(2*time.Second))
	assert.Empty(t, sink.events())
}

func TestNotifyChangedWithoutSink(t *testing.T) {
	provider := singleMessageProvider("hue", "dev1")

	svc, reg := newTestService(t)
	svc.SetTranslationResolver(newMockResolver())
	reg.Add(provider)

	// No sink wired: the publish is abandoned without panicking
	assert.NotPanics(t, func() {
		provider.notify("dev1")
		require.NoError(t, svc.Stop(2*time.Second))
	})
}

func TestNotifyChangedAfterStop(t *testing.T) {
	provider := singleMessageProvider("hue", "dev1")

	svc, reg := newTestService(t)
	reg.Add(provider)
	require.NoError(t, svc.Stop(time.Second))

	// Signal is dropped with a warning, never an error to the provider
	assert.NotPanics(t, func() { provider.notify("dev1") })
}

func TestUnsetDependenciesMidFlight(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("hue", "k1", "bad value: %s")
	sink := newMockSink()

	svc, reg := newTestService(t)
	svc.SetTranslationResolver(resolver)
	svc.SetEventSink(sink)
	reg.Add(singleMessageProvider("hue", "dev1"))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, err := svc.ConfigStatus("dev1", nil)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			svc.UnsetTranslationResolver()
			svc.UnsetEventSink()
			svc.SetTranslationResolver(resolver)
			svc.SetEventSink(sink)
		}
	}()

	wg.Wait()
}

func TestLookupDuringConcurrentRegistryMutation(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("hue", "k1", "bad value: %s")

	svc, reg := newTestService(t)
	svc.SetTranslationResolver(resolver)

	stable := singleMessageProvider("hue", "dev1")
	reg.Add(stable)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			p := singleMessageProvider("hue", fmt.Sprintf("other-%d", i))
			reg.Add(p)
			reg.Remove(p)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			info, err := svc.ConfigStatus("dev1", nil)
			assert.NoError(t, err)
			// The stable provider is never half-consulted
			if assert.NotNil(t, info) {
				assert.Equal(t, 1, info.Len())
			}
		}
	}()

	wg.Wait()
}

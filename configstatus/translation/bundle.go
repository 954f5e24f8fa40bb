package translation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fatihboy/smarthome/errors"
)

// BundleResolver resolves translations from in-memory bundles loaded from
// YAML. Each namespace owns one bundle mapping locale -> key -> template;
// templates use fmt.Sprintf verbs for argument substitution.
//
// Locale fallback order: exact tag, base language, then the resolver's
// default locale. A defaultText passed to Resolve is the final fallback for
// unknown keys.
type BundleResolver struct {
	defaultLocale language.Tag
	bundles       map[string]map[string]map[string]string // namespace -> locale -> key -> template
	mu            sync.RWMutex
}

// NewBundleResolver creates an empty resolver with the given default locale
func NewBundleResolver(defaultLocale language.Tag) *BundleResolver {
	return &BundleResolver{
		defaultLocale: defaultLocale,
		bundles:       make(map[string]map[string]map[string]string),
	}
}

// RegisterBundle parses YAML bundle data for a namespace and merges it into
// the resolver. The YAML layout is locale -> key -> template:
//
//	en:
//	  config-status.error.host: "bad value: %s"
//	de:
//	  config-status.error.host: "ungueltiger Wert: %s"
//
// Registering a namespace twice merges keys; later registrations win on
// conflict.
func (r *BundleResolver) RegisterBundle(namespace string, data []byte) error {
	if namespace == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"BundleResolver", "RegisterBundle", "namespace validation")
	}

	var parsed map[string]map[string]string
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.WrapInvalid(err, "BundleResolver", "RegisterBundle", "bundle parsing")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bundle := r.bundles[namespace]
	if bundle == nil {
		bundle = make(map[string]map[string]string)
		r.bundles[namespace] = bundle
	}
	for locale, keys := range parsed {
		normalized := normalizeLocale(locale)
		existing := bundle[normalized]
		if existing == nil {
			existing = make(map[string]string, len(keys))
			bundle[normalized] = existing
		}
		for key, template := range keys {
			existing[key] = template
		}
	}

	return nil
}

// LoadDirectory registers every *.yaml / *.yml file in dir as a bundle whose
// namespace is the file name without extension.
func (r *BundleResolver) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.WrapInvalid(err, "BundleResolver", "LoadDirectory", "bundle directory read")
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return errors.WrapInvalid(err, "BundleResolver", "LoadDirectory",
				fmt.Sprintf("bundle file read (%s)", entry.Name()))
		}

		namespace := strings.TrimSuffix(entry.Name(), ext)
		if err := r.RegisterBundle(namespace, data); err != nil {
			return err
		}
	}

	return nil
}

// Resolve implements the Resolver interface
func (r *BundleResolver) Resolve(
	namespace, key, defaultText string, locale language.Tag, args ...any,
) (string, bool) {
	r.mu.RLock()
	bundle := r.bundles[namespace]
	template, ok := lookupTemplate(bundle, key, locale, r.defaultLocale)
	r.mu.RUnlock()

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

// lookupTemplate walks the locale fallback chain within one bundle. Caller
// holds at least a read lock.
func lookupTemplate(
	bundle map[string]map[string]string, key string, locale, defaultLocale language.Tag,
) (string, bool) {
	if bundle == nil {
		return "", false
	}

	candidates := []string{normalizeLocale(locale.String())}
	if base, conf := locale.Base(); conf != language.No {
		candidates = append(candidates, base.String())
	}
	candidates = append(candidates, normalizeLocale(defaultLocale.String()))
	if base, conf := defaultLocale.Base(); conf != language.No {
		candidates = append(candidates, base.String())
	}

	for _, candidate := range candidates {
		if keys, ok := bundle[candidate]; ok {
			if template, ok := keys[key]; ok {
				return template, true
			}
		}
	}

	return "", false
}

// normalizeLocale lower-cases a locale identifier so bundle headers like
// "EN" and tags like "en-US" compare consistently.
func normalizeLocale(locale string) string {
	return strings.ToLower(locale)
}

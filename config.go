package pageling

import (
	"strings"
	"time"
)

// PublishRule prevents a set of languages from publishing a URL. The URL "/*"
// is a wildcard matching every path; an exact-URL rule always wins over the
// wildcard for the same language.
type PublishRule struct {
	URL       string   `yaml:"url" json:"url"`
	Languages []string `yaml:"languages" json:"languages"`
}

// Config holds the full engine configuration. It is constructed once, passed
// to New and from there to every component; there is no ambient global state.
type Config struct {
	// Languages is the set of selected language codes, including the source.
	Languages []string `yaml:"languages" env:"PAGELING_LANGUAGES" envSeparator:","`

	// LngSource is the language the site content is authored in.
	LngSource string `yaml:"lng_source" env:"PAGELING_LNG_SOURCE"`

	// PrefixSourceLng prefixes source-language URLs with the source code
	// (e.g. /de/about instead of /about).
	PrefixSourceLng bool `yaml:"prefix_source_lng" env:"PAGELING_PREFIX_SOURCE_LNG"`

	// ExcludedPaths lists path prefixes the pipeline bypasses entirely.
	ExcludedPaths []string `yaml:"exclude_urls" env:"PAGELING_EXCLUDE_URLS" envSeparator:","`

	// HTMLLangAttribute sets the lang attribute on the html element.
	HTMLLangAttribute bool `yaml:"html_lang_attribute" env:"PAGELING_HTML_LANG_ATTRIBUTE"`

	// HreflangTags emits one alternate link per selected language.
	HreflangTags bool `yaml:"html_hreflang_tags" env:"PAGELING_HTML_HREFLANG_TAGS"`

	// AutoTranslate calls the configured provider for missing translations.
	AutoTranslate bool `yaml:"auto_translation" env:"PAGELING_AUTO_TRANSLATION"`

	// DiscoveryLog records strings encountered without a stored translation.
	DiscoveryLog bool `yaml:"discovery_log" env:"PAGELING_DISCOVERY_LOG"`

	// LocalizeJS emits a JSON payload with the language map for client code.
	LocalizeJS bool `yaml:"localize_js" env:"PAGELING_LOCALIZE_JS"`

	// DataDir is the directory holding translation tables and the discovery log.
	DataDir string `yaml:"data_dir" env:"PAGELING_DATA_DIR"`

	// ProviderTimeout bounds a single machine-translation call.
	ProviderTimeout time.Duration `yaml:"provider_timeout" env:"PAGELING_PROVIDER_TIMEOUT"`

	// PreventPublish seeds the publish gate.
	PreventPublish []PublishRule `yaml:"prevent_publish"`

	// ExcludeSelectors lists CSS selectors whose subtrees are never rewritten.
	ExcludeSelectors []string `yaml:"translate_html_exclude"`
}

// Validate checks the configuration. A config that fails validation must not
// start the pipeline.
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return &ConfigError{Field: "languages", Message: "at least one language is required"}
	}
	if c.LngSource == "" {
		return &ConfigError{Field: "lng_source", Message: "source language is required"}
	}
	if !c.IsSelected(c.LngSource) {
		return &ConfigError{Field: "lng_source", Message: "source language must be a selected language"}
	}
	seen := make(map[string]bool, len(c.Languages))
	for _, lng := range c.Languages {
		if lng == "" {
			return &ConfigError{Field: "languages", Message: "empty language code"}
		}
		if seen[lng] {
			return &ConfigError{Field: "languages", Message: "duplicate language code: " + lng}
		}
		seen[lng] = true
	}
	return nil
}

// IsSelected reports whether lng is one of the selected languages.
func (c *Config) IsSelected(lng string) bool {
	for _, l := range c.Languages {
		if l == lng {
			return true
		}
	}
	return false
}

// TargetLngs returns every selected language except the source.
func (c *Config) TargetLngs() []string {
	targets := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		if l != c.LngSource {
			targets = append(targets, l)
		}
	}
	return targets
}

// IsExcluded reports whether path falls under one of the excluded prefixes.
func (c *Config) IsExcluded(path string) bool {
	p := "/" + strings.Trim(path, "/")
	for _, ex := range c.ExcludedPaths {
		e := "/" + strings.Trim(ex, "/")
		if p == e || strings.HasPrefix(p, e+"/") {
			return true
		}
	}
	return false
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = "./pageling-data"
	}
	if c.ProviderTimeout == 0 {
		c.ProviderTimeout = 10 * time.Second
	}
	return c
}

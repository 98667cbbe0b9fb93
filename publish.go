package pageling

import (
	"sort"
	"strings"
	"sync"
)

// WildcardURL matches every path in a publish rule.
const WildcardURL = "/*"

// Resource lifecycle states reported by the content system.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusTrash   = "trash"
)

// PublishGate controls per-(URL, language) visibility. A rule lists the
// languages prevented from publishing a URL; the wildcard rule applies to a
// language unless an exact-URL rule exists for that same pair. Most specific
// URL wins.
type PublishGate struct {
	mu     sync.RWMutex
	rules  map[string]map[string]bool
	source string
	langs  []string
}

// NewPublishGate builds a gate seeded from the configured rules.
func NewPublishGate(cfg *Config) *PublishGate {
	g := &PublishGate{
		rules:  make(map[string]map[string]bool),
		source: cfg.LngSource,
		langs:  append([]string(nil), cfg.Languages...),
	}
	for _, r := range cfg.PreventPublish {
		g.Edit(r.URL, r.Languages)
	}
	return g
}

// IsPrevented reports whether lng is prevented from publishing url.
// Evaluation order: exact-URL rule first, then the wildcard, then allowed.
func (g *PublishGate) IsPrevented(url, lng string) bool {
	key := normalizeRuleURL(url)
	g.mu.RLock()
	defer g.mu.RUnlock()
	if set, ok := g.rules[key]; ok {
		return set[lng]
	}
	if set, ok := g.rules[WildcardURL]; ok {
		return set[lng]
	}
	return false
}

// Edit replaces the rule for url with the given prevented language set.
// An empty set clears the rule. The last write per scope is authoritative,
// also when wildcard and exact rules are edited in the same batch.
func (g *PublishGate) Edit(url string, langs []string) {
	key := normalizeRuleURL(url)
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(langs) == 0 {
		delete(g.rules, key)
		return
	}
	set := make(map[string]bool, len(langs))
	for _, l := range langs {
		set[l] = true
	}
	g.rules[key] = set
}

// Change migrates an exact-URL rule when the underlying resource's URL
// changes (slug rename). The language set is preserved and re-keyed by the
// new URL. Call before any new rule is written under the new URL.
func (g *PublishGate) Change(oldURL, newURL string) {
	oldKey := normalizeRuleURL(oldURL)
	newKey := normalizeRuleURL(newURL)
	if oldKey == newKey || oldKey == WildcardURL {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if set, ok := g.rules[oldKey]; ok {
		delete(g.rules, oldKey)
		g.rules[newKey] = set
	}
}

// HandleResourceUpdate consumes a content-system lifecycle event. A renamed
// resource migrates its rule; a trashed resource loses all rules; a drafted
// resource is prevented in every non-source language until published.
func (g *PublishGate) HandleResourceUpdate(oldURL, newURL, oldStatus, newStatus string) {
	if oldURL != "" && newURL != "" && oldURL != newURL {
		g.Change(oldURL, newURL)
	}
	if oldStatus == newStatus {
		return
	}
	switch newStatus {
	case StatusTrash:
		g.Edit(newURL, nil)
	case StatusDraft:
		var prevented []string
		for _, l := range g.langs {
			if l != g.source {
				prevented = append(prevented, l)
			}
		}
		g.Edit(newURL, prevented)
	}
}

// Rules returns a sorted snapshot of the current rules.
func (g *PublishGate) Rules() []PublishRule {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]PublishRule, 0, len(g.rules))
	for url, set := range g.rules {
		langs := make([]string, 0, len(set))
		for l := range set {
			langs = append(langs, l)
		}
		sort.Strings(langs)
		out = append(out, PublishRule{URL: url, Languages: langs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// normalizeRuleURL reduces a rule URL to a comparable path: no trailing
// slash except the root, wildcard passed through.
func normalizeRuleURL(url string) string {
	if url == WildcardURL {
		return url
	}
	trimmed := strings.Trim(url, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

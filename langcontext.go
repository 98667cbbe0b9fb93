package pageling

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// LangCookieName is the cookie consulted for an explicit language choice.
const LangCookieName = "pageling_lng"

// LangContext is the resolved language state of one request: the source
// language, the prefix found in the path (empty when none) and the language
// the page is served in.
type LangContext struct {
	Source  string
	Current string
	Prefix  string
}

// SourceIsCurrent reports whether the current language equals the source.
func (lc LangContext) SourceIsCurrent() bool {
	return lc.Current == lc.Source
}

// ResolveLanguage computes the language context for the given host state.
// prefs is an opaque ordered list of acceptable languages (cookie and
// Accept-Language, most preferred first); it is consulted only when the
// source language is prefixed and the path carries no prefix. An unrecognized
// prefix segment is treated as no prefix, never as an error.
func ResolveLanguage(cfg *Config, h Host, prefs []string) LangContext {
	lc := LangContext{Source: cfg.LngSource}

	if seg := firstSegment(h.Path); seg != "" && cfg.IsSelected(seg) {
		lc.Prefix = seg
		lc.Current = seg
		return lc
	}

	if !cfg.PrefixSourceLng {
		lc.Current = cfg.LngSource
		return lc
	}

	for _, p := range prefs {
		if cfg.IsSelected(p) {
			lc.Current = p
			return lc
		}
	}
	lc.Current = cfg.LngSource
	return lc
}

// PreferredLanguages extracts the ordered language preference signal from a
// request: an explicit cookie first, then the Accept-Language header.
func PreferredLanguages(r *http.Request) []string {
	var prefs []string
	if c, err := r.Cookie(LangCookieName); err == nil && c.Value != "" {
		prefs = append(prefs, normalizeBaseLang(c.Value))
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil {
			for _, tag := range tags {
				base, conf := tag.Base()
				if conf == language.No {
					continue
				}
				prefs = append(prefs, base.String())
			}
		}
	}
	return prefs
}

// firstSegment returns the leading path segment without slashes.
func firstSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

// normalizeBaseLang extracts the lowercase base language code ("en" from "en_US").
func normalizeBaseLang(lng string) string {
	base := strings.SplitN(NormalizeLocale(lng), "_", 2)[0]
	return strings.ToLower(base)
}

package pageling

import (
	"strings"

	"github.com/pageling/pageling/store"
)

// Redirect is a terminal routing decision: emit a permanent redirect with an
// empty body and stop the pipeline.
type Redirect struct {
	Location string
	Status   int
}

// Router decides, for one request, whether to redirect, how to normalize the
// path, whether the page is publishable in the current language, and which
// source-language path the underlying content system is served while the
// visible URL stays translated.
type Router struct {
	cfg  *Config
	host Host
	lc   LangContext
	gate *PublishGate
	sess *store.Session
}

// NewRouter wires a router for one request.
func NewRouter(cfg *Config, host Host, lc LangContext, gate *PublishGate, sess *store.Session) *Router {
	return &Router{cfg: cfg, host: host, lc: lc, gate: gate, sess: sess}
}

// RedirectPrefixedSourceLng canonicalizes the source-language prefix: with
// prefixing disabled a prefixed source path redirects to its unprefixed
// equivalent, with prefixing enabled an unprefixed path gains the prefix.
// Paths already in canonical form are left alone. Runs only when the current
// language is the source language.
func (rt *Router) RedirectPrefixedSourceLng() *Redirect {
	if !rt.lc.SourceIsCurrent() {
		return nil
	}
	if !rt.cfg.PrefixSourceLng && rt.lc.Prefix != rt.lc.Source {
		return nil
	}
	if rt.cfg.PrefixSourceLng && rt.lc.Prefix != "" {
		return nil
	}

	var url string
	if !rt.cfg.PrefixSourceLng {
		stripped := strings.Trim(stripPrefix(rt.host.Path, rt.lc.Source), "/")
		url = rt.host.Root() + "/" + stripped + rt.host.Args()
	} else {
		url = rt.host.Root() + "/" + rt.lc.Current + "/"
		if p := strings.Trim(rt.host.Path, "/"); p != "" {
			url += p + "/"
		}
		url += rt.host.Args()
	}
	return &Redirect{Location: url, Status: 301}
}

// AddTrailingSlash normalizes a bare-prefix path ("/en") to its directory
// form ("/en/"). Other paths carry no language semantics here and pass
// through untouched.
func (rt *Router) AddTrailingSlash() *Redirect {
	if rt.lc.Prefix == "" {
		return nil
	}
	if rt.host.Path != "/"+rt.lc.Prefix {
		return nil
	}
	return &Redirect{
		Location: rt.host.Root() + rt.host.Path + "/" + rt.host.Args(),
		Status:   301,
	}
}

// RedirectUnpublished consults the publish gate for the source-language
// equivalent of the current path. A prevented page falls back toward the
// source language; when even the source is unpublished the page is not
// found. The fallback never loops: its target is only emitted when the
// source language itself is publishable.
func (rt *Router) RedirectUnpublished() (*Redirect, bool) {
	srcPath := rt.SourcePath()
	if !rt.gate.IsPrevented(srcPath, rt.lc.Current) {
		return nil, false
	}
	if rt.gate.IsPrevented(srcPath, rt.lc.Source) {
		return nil, true
	}
	if rt.lc.SourceIsCurrent() {
		// The source page itself cannot be both prevented and allowed.
		return nil, true
	}
	return &Redirect{Location: rt.LanguageURL(rt.lc.Source), Status: 301}, false
}

// MagicPath returns the effective path (with query args) the content system
// is served, or "" when the request path already is the native one. The
// externally visible URL stays translated; only the internal request is
// rewritten to the source-language equivalent.
func (rt *Router) MagicPath() string {
	if rt.lc.SourceIsCurrent() {
		if !rt.cfg.PrefixSourceLng {
			return ""
		}
		if rt.lc.Prefix == rt.lc.Source {
			p := stripPrefix(rt.host.Path, rt.lc.Source)
			if p == "" {
				// Site root in the source language resolves to "/", never "".
				p = "/"
			}
			return p + rt.host.Args()
		}
		return ""
	}

	translated := rt.sess.TranslatePath(stripPrefix(rt.host.Path, rt.lc.Prefix), rt.lc.Current, rt.lc.Source)
	p := strings.Trim(translated, "/")
	path := "/" + p
	if p != "" {
		path += "/"
	}
	return path + rt.host.Args()
}

// SourcePath returns the source-language equivalent of the current path,
// without prefix or trailing slash ("/" for the site root).
func (rt *Router) SourcePath() string {
	bare := stripPrefix(rt.host.Path, rt.lc.Prefix)
	if rt.lc.SourceIsCurrent() {
		bare = stripPrefix(bare, rt.lc.Source)
		return normalizePath(bare)
	}
	return normalizePath(rt.sess.TranslatePath(bare, rt.lc.Current, rt.lc.Source))
}

// LanguageURL returns the absolute URL of the current page in lng, with the
// prefixing policy applied and query args preserved verbatim.
func (rt *Router) LanguageURL(lng string) string {
	srcPath := rt.SourcePath()
	path := srcPath
	if lng != rt.lc.Source {
		path = normalizePath(rt.sess.TranslatePath(srcPath, rt.lc.Source, lng))
	}
	prefixed := lng != rt.lc.Source || rt.cfg.PrefixSourceLng
	var b strings.Builder
	b.WriteString(rt.host.Root())
	if prefixed {
		b.WriteString("/" + lng)
	}
	if path == "/" {
		b.WriteString("/")
	} else {
		b.WriteString(path + "/")
	}
	b.WriteString(rt.host.Args())
	return b.String()
}

// stripPrefix removes a leading "/<seg>" from path. Empty seg is a no-op.
func stripPrefix(path, seg string) string {
	if seg == "" {
		return path
	}
	if path == "/"+seg {
		return ""
	}
	if strings.HasPrefix(path, "/"+seg+"/") {
		return path[len(seg)+1:]
	}
	return path
}

// normalizePath reduces a path to "/" + trimmed form without a trailing
// slash; the empty path is the site root "/".
func normalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

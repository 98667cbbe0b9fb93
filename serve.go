package pageling

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pageling/pageling/rewriter"
)

// Middleware wraps the content system's handler with the live-serve flow:
// language resolution, canonical redirects, the publish gate, the magic
// rewrite of the effective request path, buffered capture of the rendered
// page and translation of the captured output. Redirects terminate the
// pipeline with an empty body; rewrite failures degrade to the untranslated
// page, never a broken one.
func (e *Engine) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := HostFromRequest(r)
		if e.cfg.IsExcluded(host.Path) {
			next.ServeHTTP(w, r)
			return
		}

		lc := ResolveLanguage(&e.cfg, host, PreferredLanguages(r))
		sess := e.newSession(host.URL(), e.cfg.DiscoveryLog, e.cfg.AutoTranslate)
		rt := NewRouter(&e.cfg, host, lc, e.gate, sess)

		if red := rt.RedirectPrefixedSourceLng(); red != nil {
			emitRedirect(w, red)
			return
		}
		if red := rt.AddTrailingSlash(); red != nil {
			emitRedirect(w, red)
			return
		}
		red, notFound := rt.RedirectUnpublished()
		if notFound {
			http.NotFound(w, r)
			return
		}
		if red != nil {
			emitRedirect(w, red)
			return
		}

		if p := rt.MagicPath(); p != "" {
			applyPath(r, p)
		}
		if e.cfg.DiscoveryLog || e.cfg.AutoTranslate {
			sess.TouchPath(r.Context(), rt.SourcePath(), e.cfg.TargetLngs())
		}

		cap := newCaptureWriter(w)
		next.ServeHTTP(cap, r)

		body := cap.body.Bytes()
		if cap.isHTML() {
			out, err := e.rewrite(r.Context(), sess, string(body), lc.Current, e.serveMeta(rt, lc))
			if err != nil {
				e.log.WithError(err).WithFields(logrus.Fields{
					"lng": lc.Current,
					"url": host.URL(),
				}).Warn("content rewrite failed, serving untranslated page")
			} else {
				body = []byte(out)
			}
		}
		cap.emit(body)

		if err := sess.Flush(); err != nil {
			// The response is already delivered; the overlay is preserved
			// inside the session for operator inspection.
			e.log.WithError(err).WithField("url", host.URL()).Error("translation store flush failed")
		}
	})
}

// serveMeta builds the language metadata for a served page.
func (e *Engine) serveMeta(rt *Router, lc LangContext) rewriter.Meta {
	var meta rewriter.Meta
	if e.cfg.HTMLLangAttribute {
		meta.Lang = ToHTMLLang(lc.Current)
		meta.Dir = GetDirection(lc.Current)
	}
	if e.cfg.HreflangTags {
		for _, lng := range e.cfg.Languages {
			meta.Alternates = append(meta.Alternates, rewriter.Alternate{
				Lng:     ToHTMLLang(lng),
				Href:    rt.LanguageURL(lng),
				Default: lng == lc.Source,
			})
		}
	}
	if e.cfg.LocalizeJS {
		urls := make(map[string]string, len(e.cfg.Languages))
		for _, lng := range e.cfg.Languages {
			urls[lng] = rt.LanguageURL(lng)
		}
		meta.LocalizePayload = map[string]any{
			"current":   lc.Current,
			"source":    lc.Source,
			"languages": urls,
		}
	}
	return meta
}

// emitRedirect terminates the pipeline with a permanent redirect and an
// empty body.
func emitRedirect(w http.ResponseWriter, red *Redirect) {
	w.Header().Set("Location", red.Location)
	w.WriteHeader(red.Status)
}

// applyPath rewrites the effective request path (preserving query args
// verbatim) before the content system renders.
func applyPath(r *http.Request, pathWithArgs string) {
	path := pathWithArgs
	if i := strings.IndexByte(pathWithArgs, '?'); i >= 0 {
		path = pathWithArgs[:i]
		r.URL.RawQuery = pathWithArgs[i+1:]
	}
	r.URL.Path = path
	r.URL.RawPath = ""
	r.RequestURI = r.URL.RequestURI()
}

// captureWriter buffers the rendered response so it can be transformed
// before emission. Headers pass through to the underlying writer; status and
// body are held back until emit.
type captureWriter struct {
	w      http.ResponseWriter
	body   bytes.Buffer
	status int
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{w: w}
}

func (c *captureWriter) Header() http.Header {
	return c.w.Header()
}

func (c *captureWriter) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	return c.body.Write(p)
}

// isHTML reports whether the captured response is an HTML document. Content
// systems frequently omit the Content-Type header; the buffered body is
// sniffed in that case.
func (c *captureWriter) isHTML() bool {
	ct := c.w.Header().Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(c.body.Bytes())
	}
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// emit releases the transformed body with a corrected Content-Length.
func (c *captureWriter) emit(body []byte) {
	c.w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	c.w.WriteHeader(status)
	_, _ = c.w.Write(body)
}

var _ http.ResponseWriter = (*captureWriter)(nil)

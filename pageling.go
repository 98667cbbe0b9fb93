// Package pageling provides instant server-side translation of rendered web
// pages. It intercepts an outgoing HTML response, rewrites its URLs and
// translatable text for a selected target language, and maintains a
// language-aware routing layer so every page is reachable under a
// language-prefixed URL without the underlying content system knowing about
// translation at all.
//
// Basic usage:
//
//	import (
//	    "net/http"
//	    "github.com/pageling/pageling"
//	    "github.com/pageling/pageling/provider"
//	)
//
//	func main() {
//	    engine, err := pageling.New(pageling.Config{
//	        Languages: []string{"de", "en"},
//	        LngSource: "de",
//	        DataDir:   "./translations",
//	    }, pageling.WithProvider(provider.NewOpenAIProvider(provider.OpenAIConfig{})))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    http.ListenAndServe(":8080", engine.Middleware(cmsHandler))
//	}
package pageling

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageling/pageling/rewriter"
	"github.com/pageling/pageling/store"
)

// Engine wires the routing, publish gate, translation store and content
// rewriter into the three entry flows: live serve (Middleware), one-shot
// Translate and Tokenize.
type Engine struct {
	cfg      Config
	catalog  *store.Catalog
	gate     *PublishGate
	rewriter *rewriter.Rewriter
	provider Provider
	usage    UsageReporter
	shared   store.Cache
	codec    store.FileCodec
	log      *logrus.Logger
	now      func() time.Time
	fetch    func(ctx context.Context, url string) (string, error)
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithProvider sets the machine-translation provider.
func WithProvider(p Provider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithUsageReporter sets the character-count sink for provider billing.
func WithUsageReporter(u UsageReporter) Option {
	return func(e *Engine) { e.usage = u }
}

// WithLogger sets the structured logger.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithSharedCache adds a shared read-through cache tier (for example Redis)
// consulted between the request overlay and the persistent catalog.
func WithSharedCache(c store.Cache) Option {
	return func(e *Engine) { e.shared = c }
}

// WithFileCodec replaces the translation table codec (a PO/MO codec plugs in
// here).
func WithFileCodec(c store.FileCodec) Option {
	return func(e *Engine) { e.codec = c }
}

// WithRewriter replaces the content rewriter.
func WithRewriter(rw *rewriter.Rewriter) Option {
	return func(e *Engine) { e.rewriter = rw }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithFetcher replaces the page fetcher used by the batch flow.
func WithFetcher(fetch func(ctx context.Context, url string) (string, error)) Option {
	return func(e *Engine) { e.fetch = fetch }
}

// New validates the configuration, loads the translation catalog and builds
// an engine. A config that fails validation never starts the pipeline.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logrus.New()
		e.log.SetOutput(io.Discard)
	}
	if e.codec == nil {
		e.codec = store.NewJSONCodec(cfg.DataDir)
	}
	if e.rewriter == nil {
		e.rewriter = rewriter.New(rewriter.WithExcludeSelectors(cfg.ExcludeSelectors))
	}
	if e.fetch == nil {
		e.fetch = fetchHTTP
	}

	dlog := store.OpenDiscoveryLog(filepath.Join(cfg.DataDir, "discovery.log"))
	catalog, err := store.Open(cfg.LngSource, cfg.TargetLngs(), e.codec, dlog)
	if err != nil {
		return nil, &StoreError{Message: "opening translation catalog", Cause: err}
	}
	e.catalog = catalog
	e.gate = NewPublishGate(&cfg)
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Catalog exposes the translation catalog for tooling.
func (e *Engine) Catalog() *store.Catalog { return e.catalog }

// Gate exposes the publish gate.
func (e *Engine) Gate() *PublishGate { return e.gate }

// HandleResourceUpdate consumes a content-system lifecycle event and keeps
// the publish gate in step with renames, drafts and trashing.
func (e *Engine) HandleResourceUpdate(oldURL, newURL, oldStatus, newStatus string) {
	e.gate.HandleResourceUpdate(oldURL, newURL, oldStatus, newStatus)
}

// newSession opens a per-request session with the engine's tiers wired in.
func (e *Engine) newSession(url string, discovery, auto bool) *store.Session {
	opts := []store.SessionOption{
		store.WithDiscovery(discovery),
		store.WithClock(e.now),
	}
	if e.shared != nil {
		opts = append(opts, store.WithSharedCache(e.shared))
	}
	if auto && e.provider != nil {
		name := e.provider.Name()
		bill := func(chars int) {
			if e.usage != nil {
				e.usage.ReportUsage(name, chars)
			}
		}
		opts = append(opts, store.WithMachineTranslation(e.provider.Translate, bill, e.cfg.ProviderTimeout))
	}
	return e.catalog.NewSession(url, opts...)
}

// rewrite runs extract, batch resolution and apply for one document.
func (e *Engine) rewrite(ctx context.Context, sess *store.Session, content, lng string, meta rewriter.Meta) (string, error) {
	doc, keys, err := e.rewriter.Extract(content)
	if err != nil {
		return "", &RewriteError{Message: "extracting translatable content", Cause: err}
	}
	resolved := sess.ResolveAll(ctx, keys, lng)
	out, err := e.rewriter.Apply(doc, resolved, meta)
	if err != nil {
		return "", &RewriteError{Message: "applying translations", Cause: err}
	}
	return out, nil
}

// Translate performs a one-shot rewrite of an HTML fragment into lng. It has
// no routing side effects and leaves the persistent store untouched.
func (e *Engine) Translate(ctx context.Context, content, lng string) (string, error) {
	if !e.cfg.IsSelected(lng) {
		return "", &ConfigError{Field: "lng", Message: "not a selected language: " + lng}
	}
	sess := e.newSession("", false, e.cfg.AutoTranslate)
	defer sess.Discard()

	var meta rewriter.Meta
	if e.cfg.HTMLLangAttribute {
		meta.Lang = ToHTMLLang(lng)
		meta.Dir = GetDirection(lng)
	}
	return e.rewrite(ctx, sess, content, lng, meta)
}

// Tokenize extracts every translatable string from content by rendering it
// against a fixed synthetic language pair with discovery logging forced on.
// All store mutations are rolled back; from the caller's perspective this is
// pure extraction.
func (e *Engine) Tokenize(ctx context.Context, content string) ([]store.DiscoveryRecord, error) {
	// The synthetic pair just needs two different languages.
	catalog, err := store.Open("de", []string{"en"}, store.NewMemCodec(), nil)
	if err != nil {
		return nil, &StoreError{Message: "opening tokenize catalog", Cause: err}
	}
	sess := catalog.NewSession("", store.WithDiscovery(true), store.WithClock(e.now))
	defer sess.Discard()

	_, keys, err := e.rewriter.Extract(content)
	if err != nil {
		return nil, &RewriteError{Message: "extracting translatable content", Cause: err}
	}
	for _, k := range keys {
		sess.Resolve(ctx, k, "en")
	}
	return sess.Records(), nil
}

// DiscoveryLogGet queries the discovery log for records flushed strictly
// after since, optionally restricted to a URL set or to first-ever
// sightings.
func (e *Engine) DiscoveryLogGet(since time.Time, urls []string, onlyNew bool) ([]store.DiscoveryRecord, error) {
	return e.catalog.Log().Get(since, urls, onlyNew)
}

// DeleteUnusedTranslations removes every translation key with zero discovery
// sightings after since and returns the count removed. Destructive;
// operator-invoked only, the caller is responsible for having crawled the
// full site since that date.
func (e *Engine) DeleteUnusedTranslations(since time.Time) (int, error) {
	n, err := e.catalog.DeleteUnused(since)
	if err != nil {
		return n, &StoreError{Message: "deleting unused translations", Cause: err}
	}
	e.log.WithField("removed", n).Info("deleted unused translations")
	return n, nil
}

// Reset clears all translation data and the discovery log. Destructive,
// operator-invoked only.
func (e *Engine) Reset() error {
	if err := e.catalog.Reset(); err != nil {
		return &StoreError{Message: "resetting translation data", Cause: err}
	}
	e.log.Info("translation data reset")
	return nil
}

// fetchHTTP is the default batch-flow page fetcher.
func fetchHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

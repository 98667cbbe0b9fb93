package pageling

import (
	"testing"

	"github.com/pageling/pageling/store"
)

func testSession(t *testing.T) *store.Session {
	t.Helper()
	cat, err := store.Open("en", []string{"de", "fr"}, store.NewMemCodec(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	cat.Upsert(store.Key{Str: "about", Context: store.ContextSlug}, "de", "ueber-uns", false)
	cat.Upsert(store.Key{Str: "team", Context: store.ContextSlug}, "de", "mannschaft", false)
	return cat.NewSession("")
}

func newTestRouter(t *testing.T, cfg *Config, path, query string) *Router {
	t.Helper()
	h := Host{Scheme: "http", Domain: "example.com", Path: path, RawQuery: query}
	lc := ResolveLanguage(cfg, h, nil)
	gate := NewPublishGate(cfg)
	return NewRouter(cfg, h, lc, gate, testSession(t))
}

func TestRedirectPrefixedSourceLng_Unprefix(t *testing.T) {
	cfg := testConfig(false)

	tests := []struct {
		name  string
		path  string
		query string
		want  string // empty means no redirect
	}{
		{"prefixed page", "/en/about/", "", "http://example.com/about"},
		{"prefixed root", "/en/", "", "http://example.com/"},
		{"bare prefix", "/en", "", "http://example.com/"},
		{"args preserved", "/en/about/", "page=2&sort=asc", "http://example.com/about?page=2&sort=asc"},
		{"canonical page untouched", "/about/", "", ""},
		{"canonical root untouched", "/", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRouter(t, cfg, tt.path, tt.query)
			red := rt.RedirectPrefixedSourceLng()
			if tt.want == "" {
				if red != nil {
					t.Fatalf("Expected no redirect, got %+v", red)
				}
				return
			}
			if red == nil {
				t.Fatal("Expected a redirect")
			}
			if red.Location != tt.want {
				t.Errorf("Location = %q, want %q", red.Location, tt.want)
			}
			if red.Status != 301 {
				t.Errorf("Status = %d, want 301", red.Status)
			}
		})
	}
}

func TestRedirectPrefixedSourceLng_AddPrefix(t *testing.T) {
	cfg := testConfig(true)

	tests := []struct {
		name  string
		path  string
		query string
		want  string
	}{
		{"unprefixed page", "/about/", "", "http://example.com/en/about/"},
		{"unprefixed root", "/", "", "http://example.com/en/"},
		{"args preserved", "/about/", "page=2", "http://example.com/en/about/?page=2"},
		{"canonical untouched", "/en/about/", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRouter(t, cfg, tt.path, tt.query)
			red := rt.RedirectPrefixedSourceLng()
			if tt.want == "" {
				if red != nil {
					t.Fatalf("Expected no redirect, got %+v", red)
				}
				return
			}
			if red == nil {
				t.Fatal("Expected a redirect")
			}
			if red.Location != tt.want {
				t.Errorf("Location = %q, want %q", red.Location, tt.want)
			}
		})
	}
}

func TestRedirectPrefixedSourceLng_TargetLanguageUntouched(t *testing.T) {
	rt := newTestRouter(t, testConfig(false), "/de/ueber-uns/", "")
	if red := rt.RedirectPrefixedSourceLng(); red != nil {
		t.Errorf("Target-language requests never canonicalize here, got %+v", red)
	}
}

func TestAddTrailingSlash(t *testing.T) {
	cfg := testConfig(false)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"bare prefix", "/de", "http://example.com/de/"},
		{"prefix with slash", "/de/", ""},
		{"prefixed page", "/de/ueber-uns", ""},
		{"no prefix", "/about", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRouter(t, cfg, tt.path, "")
			red := rt.AddTrailingSlash()
			if tt.want == "" {
				if red != nil {
					t.Fatalf("Expected no redirect, got %+v", red)
				}
				return
			}
			if red == nil {
				t.Fatal("Expected a redirect")
			}
			if red.Location != tt.want || red.Status != 301 {
				t.Errorf("Got %+v, want 301 to %q", red, tt.want)
			}
		})
	}
}

func TestAddTrailingSlash_KeepsArgs(t *testing.T) {
	rt := newTestRouter(t, testConfig(false), "/de", "page=2")
	red := rt.AddTrailingSlash()
	if red == nil {
		t.Fatal("Expected a redirect")
	}
	if red.Location != "http://example.com/de/?page=2" {
		t.Errorf("Location = %q", red.Location)
	}
}

func TestRedirectUnpublished(t *testing.T) {
	cfg := testConfig(false)

	t.Run("published page passes", func(t *testing.T) {
		rt := newTestRouter(t, cfg, "/de/ueber-uns/", "")
		red, notFound := rt.RedirectUnpublished()
		if red != nil || notFound {
			t.Errorf("Expected pass-through, got red=%+v notFound=%v", red, notFound)
		}
	})

	t.Run("prevented target falls back to source", func(t *testing.T) {
		rt := newTestRouter(t, cfg, "/de/ueber-uns/", "")
		rt.gate.Edit("/about", []string{"de"})

		red, notFound := rt.RedirectUnpublished()
		if notFound {
			t.Fatal("Source is publishable, expected a redirect instead of 404")
		}
		if red == nil {
			t.Fatal("Expected a redirect")
		}
		if red.Location != "http://example.com/about/" {
			t.Errorf("Location = %q, want source-language URL", red.Location)
		}
		if red.Status != 301 {
			t.Errorf("Status = %d, want 301", red.Status)
		}
	})

	t.Run("prevented everywhere is not found", func(t *testing.T) {
		rt := newTestRouter(t, cfg, "/de/ueber-uns/", "")
		rt.gate.Edit("/about", []string{"de", "en"})

		red, notFound := rt.RedirectUnpublished()
		if !notFound {
			t.Error("Expected not found when the source is prevented too")
		}
		if red != nil {
			t.Errorf("A not-found page never redirects, got %+v", red)
		}
	})

	t.Run("prevented source page is not found", func(t *testing.T) {
		rt := newTestRouter(t, cfg, "/about/", "")
		rt.gate.Edit("/about", []string{"en"})

		red, notFound := rt.RedirectUnpublished()
		if !notFound || red != nil {
			t.Errorf("Expected not found, got red=%+v notFound=%v", red, notFound)
		}
	})

	t.Run("gate is consulted with the source path", func(t *testing.T) {
		// The rule names the source slug; the request carries the translated one.
		rt := newTestRouter(t, cfg, "/de/ueber-uns/team/", "")
		rt.gate.Edit("/about/team", []string{"de"})

		red, _ := rt.RedirectUnpublished()
		if red == nil {
			t.Fatal("Expected the translated path to resolve to the gated source path")
		}
	})
}

func TestMagicPath(t *testing.T) {
	tests := []struct {
		name         string
		prefixSource bool
		path         string
		query        string
		want         string // empty means no rewrite
	}{
		{"source unprefixed needs no rewrite", false, "/about/", "", ""},
		{"source root needs no rewrite", false, "/", "", ""},
		{"prefixed source strips prefix", true, "/en/about", "", "/about"},
		{"prefixed source root becomes slash", true, "/en/", "", "/"},
		{"bare source prefix becomes slash", true, "/en", "", "/"},
		{"target maps to source slugs", false, "/de/ueber-uns/", "", "/about/"},
		{"target nested slugs", false, "/de/ueber-uns/mannschaft/", "", "/about/team/"},
		{"target unknown slug passes through", false, "/de/pricing/", "", "/pricing/"},
		{"target root", false, "/de/", "", "/"},
		{"args preserved verbatim", false, "/de/ueber-uns/", "page=2&x=a%20b", "/about/?page=2&x=a%20b"},
		{"prefixed source keeps args", true, "/en/about", "page=2", "/about?page=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.prefixSource)
			rt := newTestRouter(t, cfg, tt.path, tt.query)
			got := rt.MagicPath()
			if got != tt.want {
				t.Errorf("MagicPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestSourcePath(t *testing.T) {
	tests := []struct {
		name         string
		prefixSource bool
		path         string
		want         string
	}{
		{"source page", false, "/about/", "/about"},
		{"source root", false, "/", "/"},
		{"prefixed source", true, "/en/about/", "/about"},
		{"target page", false, "/de/ueber-uns/", "/about"},
		{"target nested", false, "/de/ueber-uns/mannschaft", "/about/team"},
		{"target root", false, "/de/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRouter(t, testConfig(tt.prefixSource), tt.path, "")
			if got := rt.SourcePath(); got != tt.want {
				t.Errorf("SourcePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLanguageURL(t *testing.T) {
	t.Run("unprefixed source", func(t *testing.T) {
		rt := newTestRouter(t, testConfig(false), "/de/ueber-uns/", "page=2")

		if got := rt.LanguageURL("en"); got != "http://example.com/about/?page=2" {
			t.Errorf("LanguageURL(en) = %q", got)
		}
		if got := rt.LanguageURL("de"); got != "http://example.com/de/ueber-uns/?page=2" {
			t.Errorf("LanguageURL(de) = %q", got)
		}
		// No fr slug exists; the source slug passes through.
		if got := rt.LanguageURL("fr"); got != "http://example.com/fr/about/?page=2" {
			t.Errorf("LanguageURL(fr) = %q", got)
		}
	})

	t.Run("prefixed source", func(t *testing.T) {
		rt := newTestRouter(t, testConfig(true), "/en/about/", "")
		if got := rt.LanguageURL("en"); got != "http://example.com/en/about/" {
			t.Errorf("LanguageURL(en) = %q", got)
		}
	})

	t.Run("root page", func(t *testing.T) {
		rt := newTestRouter(t, testConfig(false), "/", "")
		if got := rt.LanguageURL("de"); got != "http://example.com/de/" {
			t.Errorf("LanguageURL(de) = %q", got)
		}
		if got := rt.LanguageURL("en"); got != "http://example.com/" {
			t.Errorf("LanguageURL(en) = %q", got)
		}
	})
}

package rewriter

import (
	"strings"
	"testing"

	"github.com/pageling/pageling/store"
)

func keySet(keys []store.Key) map[store.Key]bool {
	set := make(map[store.Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func TestExtract_TextNodes(t *testing.T) {
	rw := New()
	_, keys, err := rw.Extract(`<html><body><h1>Welcome</h1><p>Find great deals.</p></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	set := keySet(keys)
	if !set[store.Key{Str: "Welcome"}] {
		t.Error("Expected heading text to be extracted")
	}
	if !set[store.Key{Str: "Find great deals."}] {
		t.Error("Expected paragraph text to be extracted")
	}
}

func TestExtract_DeduplicatesInDocumentOrder(t *testing.T) {
	rw := New()
	_, keys, err := rw.Extract(`<html><body><p>First</p><p>Second</p><p>First</p></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 unique keys, got %d: %v", len(keys), keys)
	}
	if keys[0].Str != "First" || keys[1].Str != "Second" {
		t.Errorf("Keys must keep document order: %v", keys)
	}
}

func TestExtract_IgnoredTags(t *testing.T) {
	rw := New()
	_, keys, err := rw.Extract(`<html><body>
<script>var x = "Not content";</script>
<style>.a { color: red; }</style>
<pre>preformatted text</pre>
<code>code()</code>
<p>Real content</p>
</body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	set := keySet(keys)
	if len(keys) != 1 || !set[store.Key{Str: "Real content"}] {
		t.Errorf("Only the paragraph should be extracted, got %v", keys)
	}
}

func TestExtract_NoTranslateAttribute(t *testing.T) {
	rw := New()
	_, keys, err := rw.Extract(`<html><body>
<div data-no-translate><p>Brand Name</p></div>
<p>Normal text</p>
</body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	set := keySet(keys)
	if set[store.Key{Str: "Brand Name"}] {
		t.Error("data-no-translate subtrees must be skipped")
	}
	if !set[store.Key{Str: "Normal text"}] {
		t.Error("Expected normal text to be extracted")
	}
}

func TestExtract_ExcludeSelectors(t *testing.T) {
	rw := New(WithExcludeSelectors([]string{".notranslate", "#footer"}))
	_, keys, err := rw.Extract(`<html><body>
<div class="notranslate"><p>Skip me</p></div>
<div id="footer">Skip me too</div>
<p>Keep me</p>
</body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	set := keySet(keys)
	if set[store.Key{Str: "Skip me"}] || set[store.Key{Str: "Skip me too"}] {
		t.Errorf("Excluded subtrees must be skipped, got %v", keys)
	}
	if !set[store.Key{Str: "Keep me"}] {
		t.Error("Expected unexcluded text to be extracted")
	}
}

func TestExtract_Attributes(t *testing.T) {
	rw := New()
	_, keys, err := rw.Extract(`<html><body>
<img src="x.png" alt="A product photo"/>
<a href="/x" title="Product details">link</a>
<input placeholder="Your email"/>
<img src="y.png" alt="  "/>
</body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	set := keySet(keys)
	want := []store.Key{
		{Str: "A product photo", Context: "alt"},
		{Str: "Product details", Context: "title"},
		{Str: "Your email", Context: "placeholder"},
	}
	for _, k := range want {
		if !set[k] {
			t.Errorf("Expected %+v to be extracted", k)
		}
	}
	for k := range set {
		if k.Context == "alt" && k.Str == "" {
			t.Error("Blank attributes must be skipped")
		}
	}
}

func TestExtract_TitleAndMetaDescription(t *testing.T) {
	rw := New()
	_, keys, err := rw.Extract(`<html><head>
<title>Our Store</title>
<meta name="description" content="The best products."/>
<meta name="viewport" content="width=device-width"/>
</head><body></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	set := keySet(keys)
	if !set[store.Key{Str: "Our Store", Context: "title"}] {
		t.Errorf("Title text must be keyed under the title context, got %v", keys)
	}
	if !set[store.Key{Str: "The best products.", Context: "description"}] {
		t.Errorf("Meta description must be extracted, got %v", keys)
	}
	if set[store.Key{Str: "width=device-width", Context: "description"}] {
		t.Error("Non-description meta tags must be skipped")
	}
}

func TestApply_ReplacesTextAndAttributes(t *testing.T) {
	rw := New()
	doc, _, err := rw.Extract(`<html><body>
<h1>Welcome</h1>
<img src="x.png" alt="A product photo"/>
</body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out, err := rw.Apply(doc, map[store.Key]string{
		{Str: "Welcome"}:                         "Willkommen",
		{Str: "A product photo", Context: "alt"}: "Ein Produktfoto",
	}, Meta{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !strings.Contains(out, "Willkommen") {
		t.Errorf("Expected translated heading: %s", out)
	}
	if !strings.Contains(out, `alt="Ein Produktfoto"`) {
		t.Errorf("Expected translated alt attribute: %s", out)
	}
	if strings.Contains(out, ">Welcome<") {
		t.Errorf("Original heading should be replaced: %s", out)
	}
}

func TestApply_MissingKeysLeftUntouched(t *testing.T) {
	rw := New()
	doc, _, err := rw.Extract(`<html><body><p>Keep me</p></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out, err := rw.Apply(doc, map[store.Key]string{}, Meta{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(out, "Keep me") {
		t.Errorf("Unresolved text must stay, got: %s", out)
	}
}

func TestApply_PreservesWhitespace(t *testing.T) {
	rw := New()
	doc, _, err := rw.Extract("<html><body><p>\n  Welcome\n</p></body></html>")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out, err := rw.Apply(doc, map[store.Key]string{
		{Str: "Welcome"}: "Willkommen",
	}, Meta{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(out, "\n  Willkommen\n") {
		t.Errorf("Leading and trailing whitespace must survive: %q", out)
	}
}

func TestApply_LangAndDir(t *testing.T) {
	rw := New()
	doc, _, err := rw.Extract(`<html lang="en"><body><p>Hi</p></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out, err := rw.Apply(doc, nil, Meta{Lang: "ar", Dir: "rtl"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(out, `lang="ar"`) {
		t.Errorf("Expected lang attribute: %s", out)
	}
	if !strings.Contains(out, `dir="rtl"`) {
		t.Errorf("Expected dir attribute: %s", out)
	}
}

func TestApply_HreflangAlternates(t *testing.T) {
	rw := New()
	doc, _, err := rw.Extract(`<html><head><title>T</title></head><body></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out, err := rw.Apply(doc, nil, Meta{
		Alternates: []Alternate{
			{Lng: "en", Href: "http://example.com/about/", Default: true},
			{Lng: "de", Href: "http://example.com/de/ueber-uns/"},
		},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !strings.Contains(out, `hreflang="en"`) || !strings.Contains(out, `hreflang="de"`) {
		t.Errorf("Expected hreflang links: %s", out)
	}
	if !strings.Contains(out, `hreflang="x-default"`) {
		t.Errorf("Expected x-default for the default alternate: %s", out)
	}
	if strings.Count(out, "http://example.com/about/") != 2 {
		t.Errorf("Default URL should appear as its language and as x-default: %s", out)
	}
}

func TestApply_LocalizePayload(t *testing.T) {
	rw := New()
	doc, _, err := rw.Extract(`<html><body><p>Hi</p></body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out, err := rw.Apply(doc, nil, Meta{
		LocalizePayload: map[string]string{"current": "de"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(out, `id="pageling-localize"`) {
		t.Errorf("Expected payload script: %s", out)
	}
	if !strings.Contains(out, `"current":"de"`) {
		t.Errorf("Expected payload content: %s", out)
	}
}

func TestWithIgnoredTags(t *testing.T) {
	rw := New(WithIgnoredTags([]string{"nav"}))
	_, keys, err := rw.Extract(`<html><body>
<nav><a href="/">Home</a></nav>
<script>var s = 1;</script>
<p>Body text</p>
</body></html>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	set := keySet(keys)
	if set[store.Key{Str: "Home"}] {
		t.Error("Custom ignored tag must be skipped")
	}
	if !set[store.Key{Str: "Body text"}] {
		t.Error("Expected body text to be extracted")
	}
}

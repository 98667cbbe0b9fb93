// Package rewriter orchestrates translation over a parsed HTML document:
// extracting candidate strings, applying resolved translations back to text
// nodes and attributes, and emitting language metadata.
package rewriter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pageling/pageling/store"
)

// IgnoredTags contains HTML tags whose content is never translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// DefaultAttributes maps translatable attribute names to the context
// qualifier their strings are keyed under.
var DefaultAttributes = map[string]string{
	"alt":         "alt",
	"title":       "title",
	"placeholder": "placeholder",
}

// Rewriter holds the node-qualification configuration: ignored tags,
// translatable attributes and excluded selector subtrees.
type Rewriter struct {
	ignoredTags map[string]bool
	attributes  map[string]string
	excludeSel  []string
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithIgnoredTags replaces the default ignored tag set.
func WithIgnoredTags(tags []string) Option {
	return func(rw *Rewriter) {
		ignored := make(map[string]bool, len(tags))
		for _, tag := range tags {
			ignored[strings.ToLower(tag)] = true
		}
		rw.ignoredTags = ignored
	}
}

// WithAttributes replaces the translatable attribute map.
func WithAttributes(attrs map[string]string) Option {
	return func(rw *Rewriter) { rw.attributes = attrs }
}

// WithExcludeSelectors excludes every node matching one of the CSS
// selectors, including its subtree.
func WithExcludeSelectors(selectors []string) Option {
	return func(rw *Rewriter) { rw.excludeSel = selectors }
}

// New creates a Rewriter with the default qualification rules.
func New(opts ...Option) *Rewriter {
	rw := &Rewriter{
		ignoredTags: IgnoredTags,
		attributes:  DefaultAttributes,
	}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// textRef binds an extracted key to the text node it came from.
type textRef struct {
	key  store.Key
	node *html.Node
}

// attrRef binds an extracted key to an element attribute.
type attrRef struct {
	key  store.Key
	node *html.Node
	attr string
}

// Document is a parsed page with its extracted candidate bindings.
type Document struct {
	doc   *goquery.Document
	texts []textRef
	attrs []attrRef
}

// Alternate describes one hreflang link tag.
type Alternate struct {
	Lng     string
	Href    string
	Default bool // additionally emitted as x-default
}

// Meta is the language metadata applied to the document.
type Meta struct {
	Lang            string      // html lang attribute value; empty leaves it alone
	Dir             string      // text direction; empty leaves it alone
	Alternates      []Alternate // hreflang link tags; nil emits none
	LocalizePayload any         // JSON payload for client code; nil emits none
}

// Extract parses content and collects the translation keys of every
// qualifying text node and attribute, in document order and deduplicated.
func (rw *Rewriter) Extract(content string) (*Document, []store.Key, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML: %w", err)
	}

	excluded := rw.excludedNodes(doc)

	d := &Document{doc: doc}
	var keys []store.Key
	seen := make(map[store.Key]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if excluded[n] {
			return
		}
		if n.Type == html.ElementNode {
			if rw.ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "data-no-translate" {
					return
				}
			}
			for _, attr := range n.Attr {
				context, ok := rw.attributes[attr.Key]
				if !ok || strings.TrimSpace(attr.Val) == "" {
					continue
				}
				key := store.Key{Str: strings.TrimSpace(attr.Val), Context: context}
				d.attrs = append(d.attrs, attrRef{key: key, node: n, attr: attr.Key})
				if !seen[key] {
					seen[key] = true
					keys = append(keys, key)
				}
			}
			if strings.ToLower(n.Data) == "meta" {
				if key, ok := metaDescriptionKey(n); ok {
					d.attrs = append(d.attrs, attrRef{key: key, node: n, attr: "content"})
					if !seen[key] {
						seen[key] = true
						keys = append(keys, key)
					}
				}
			}
		}

		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				key := store.Key{Str: trimmed, Context: textContext(n)}
				d.texts = append(d.texts, textRef{key: key, node: n})
				if !seen[key] {
					seen[key] = true
					keys = append(keys, key)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	doc.Each(func(i int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			walk(n)
		}
	})

	return d, keys, nil
}

// Apply replaces every bound text node and attribute with its resolved
// string and applies the language metadata. A key missing from resolved is
// skipped, leaving the original content untouched.
func (rw *Rewriter) Apply(d *Document, resolved map[store.Key]string, meta Meta) (string, error) {
	for _, ref := range d.texts {
		if translated, ok := resolved[ref.key]; ok {
			// Preserve original whitespace
			ref.node.Data = preserveWhitespace(ref.node.Data, translated)
		}
	}
	for _, ref := range d.attrs {
		translated, ok := resolved[ref.key]
		if !ok {
			continue
		}
		for i, attr := range ref.node.Attr {
			if attr.Key == ref.attr {
				ref.node.Attr[i].Val = translated
			}
		}
	}

	rw.applyMeta(d.doc, meta)

	out, err := d.doc.Html()
	if err != nil {
		return "", fmt.Errorf("serializing HTML: %w", err)
	}
	return out, nil
}

// applyMeta sets the document language attributes, hreflang alternates and
// the optional localization payload.
func (rw *Rewriter) applyMeta(doc *goquery.Document, meta Meta) {
	if meta.Lang != "" {
		if htmlTag := doc.Find("html"); htmlTag.Length() > 0 {
			htmlTag.SetAttr("lang", meta.Lang)
			if meta.Dir != "" {
				htmlTag.SetAttr("dir", meta.Dir)
			}
		}
	}

	head := doc.Find("head").First()
	if len(meta.Alternates) > 0 && head.Length() > 0 {
		var b strings.Builder
		for _, alt := range meta.Alternates {
			fmt.Fprintf(&b, "<link rel=\"alternate\" hreflang=%q href=%q/>", alt.Lng, alt.Href)
			if alt.Default {
				fmt.Fprintf(&b, "<link rel=\"alternate\" hreflang=\"x-default\" href=%q/>", alt.Href)
			}
		}
		head.AppendHtml(b.String())
	}

	if meta.LocalizePayload != nil {
		data, err := json.Marshal(meta.LocalizePayload)
		if err == nil {
			target := doc.Find("body").First()
			if target.Length() == 0 {
				target = head
			}
			if target.Length() > 0 {
				target.AppendHtml(fmt.Sprintf(
					"<script id=\"pageling-localize\" type=\"application/json\">%s</script>",
					string(data),
				))
			}
		}
	}
}

// excludedNodes collects every node under a configured exclude selector.
func (rw *Rewriter) excludedNodes(doc *goquery.Document) map[*html.Node]bool {
	excluded := make(map[*html.Node]bool)
	for _, sel := range rw.excludeSel {
		doc.Find(sel).Each(func(i int, s *goquery.Selection) {
			for _, n := range s.Nodes {
				excluded[n] = true
			}
		})
	}
	return excluded
}

// textContext derives a context qualifier from the static role of the
// enclosing tag. Most text carries no context.
func textContext(n *html.Node) string {
	if n.Parent != nil && n.Parent.Type == html.ElementNode {
		if strings.ToLower(n.Parent.Data) == "title" {
			return "title"
		}
	}
	return ""
}

// metaDescriptionKey extracts the description key from a meta tag, if it is
// a description tag with non-empty content. Unmatchable tags are skipped.
func metaDescriptionKey(n *html.Node) (store.Key, bool) {
	var name, content string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "name":
			name = strings.ToLower(attr.Val)
		case "content":
			content = attr.Val
		}
	}
	if name != "description" || strings.TrimSpace(content) == "" {
		return store.Key{}, false
	}
	return store.Key{Str: strings.TrimSpace(content), Context: "description"}, true
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	// Find leading whitespace
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	// Find trailing whitespace
	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + translated + trailing
}

package rewrite

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/yendo/webmirror/internal/model"
)

// refAttrs is the ordered list of candidate attribute names carrying an
// asset reference. The first attribute present on an element wins.
//
// Design decision: An explicit ordered list rather than per-tag attribute
// tables because link/script/img elements use href or src uniformly and
// the rewrite must treat them the same way.
var refAttrs = []string{"href", "src"}

// StripLeadingSlash parses an HTML document and, for every element whose
// tag is in tags and which carries an href or src attribute, strips
// exactly one leading "/" from the attribute value. References without a
// leading slash are left unchanged; protocol-relative "//host/..." forms
// lose only the single leading slash. The document is returned
// serialized.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because it tolerates the malformed HTML common on the web and gives a
// proper tree to walk. Parsing is best-effort and never fails on bad
// markup; only reader errors surface.
func StripLeadingSlash(htmlText string, tags []string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	tagSet := toSet(tags)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && tagSet[n.Data] {
			if key, val, ok := refAttr(n); ok {
				setAttr(n, key, strings.TrimPrefix(val, "/"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}

	return sb.String(), nil
}

// ExtractAssets parses an HTML document and returns one reference per
// element whose tag is in tags and which carries an href or src
// attribute, resolved to an absolute URL against baseURL. References
// that resolve to non-fetchable schemes (javascript:, mailto:, data:)
// or to nothing at all are skipped.
func ExtractAssets(htmlText, baseURL string, tags []string) ([]model.AssetReference, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	tagSet := toSet(tags)
	refs := make([]model.AssetReference, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && tagSet[n.Data] {
			if _, val, ok := refAttr(n); ok {
				if resolved := resolveRef(base, val); resolved != "" {
					refs = append(refs, model.AssetReference{Tag: n.Data, URL: resolved})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return refs, nil
}

// resolveRef resolves a reference against the base URL, returning an
// empty string for values that cannot be fetched.
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "#" ||
		strings.HasPrefix(ref, "javascript:") ||
		strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "tel:") ||
		strings.HasPrefix(ref, "data:") {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	return base.ResolveReference(u).String()
}

// refAttr returns the first candidate reference attribute present on the
// node, as (key, value, found).
func refAttr(n *html.Node) (string, string, bool) {
	for _, key := range refAttrs {
		for _, attr := range n.Attr {
			if attr.Key == key {
				return key, attr.Val, true
			}
		}
	}
	return "", "", false
}

// setAttr replaces the value of an existing attribute on the node.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
}

// toSet converts a tag list to a lookup set.
func toSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[strings.ToLower(tag)] = true
	}
	return set
}

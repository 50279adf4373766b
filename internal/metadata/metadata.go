package metadata

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/yendo/webmirror/internal/console"
	"github.com/yendo/webmirror/internal/model"
)

// Compute counts the anchor and image tags in an HTML document and
// stamps the result with the current UTC time. The returned Metadata is
// a value owned by the caller; it is never stored on shared state.
func Compute(htmlText string) (model.Metadata, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return model.Metadata{}, fmt.Errorf("failed to parse html: %w", err)
	}

	md := model.Metadata{
		LastFetch: time.Now().UTC().Format(model.TimestampLayout),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				md.NumLinks++
			case "img":
				md.NumImages++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return md, nil
}

// Print writes the metadata to the console, one field per line under a
// header. The whole block is emitted with a single locked write so
// concurrent pages never interleave their metadata.
func Print(out *console.Console, md model.Metadata) {
	var sb strings.Builder
	sb.WriteString("Metadata:\n")
	fmt.Fprintf(&sb, "num_links: %d\n", md.NumLinks)
	fmt.Fprintf(&sb, "images: %d\n", md.NumImages)
	fmt.Fprintf(&sb, "last_fetch: %s\n", md.LastFetch)
	out.Printf("%s", sb.String())
}

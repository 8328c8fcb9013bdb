package client

import (
	"bytes"
	"pricecompare/internal/misc"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// HTMLToText renders an HTML fragment from a retailer description as plain text, with
// line breaks kept and runs of blanks collapsed.
func HTMLToText(s string) (string, error) {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(html.UnescapeString(s)), nil
	}
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse description HTML")
	}
	body := findElement(node, "body", 0)
	if body == nil {
		return "", errors.New("failed to find description HTML body")
	}

	buf := &bytes.Buffer{}
	buf.Grow(len(s))
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err = html.Render(buf, c); err != nil {
			return "", errors.Wrap(err, "failed to render description HTML body")
		}
	}
	b := buf.Bytes()
	b = bytes.ReplaceAll(b, []byte("\\n"), []byte(""))
	b = bytes.ReplaceAll(b, []byte("<br/>"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("</p>"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("</li>"), []byte("\n"))
	b = misc.HTMLTagRegex.ReplaceAllLiteral(b, []byte(" "))
	b = misc.ExtraSpaceRegex.ReplaceAllLiteral(b, []byte(" "))

	lines := strings.Split(html.UnescapeString(string(b)), "\n")
	text := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			text = append(text, l)
		}
	}
	return strings.Join(text, "\n"), nil
}

const maxHTMLDepth = 64

func findElement(n *html.Node, tag string, depth int) *html.Node {
	if n == nil || depth > maxHTMLDepth {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag, depth+1); found != nil {
			return found
		}
	}
	return nil
}

package provider

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/launchlog/docgate/internal/models"
)

// resultCardClass marks a search result block on the HTML results page.
const resultCardClass = "g"

// parseResultCards walks the result page DOM and extracts up to limit
// result cards: the first anchor of each card supplies url and title,
// the card's visible text becomes the snippet.
func parseResultCards(r io.Reader, limit int) ([]models.SearchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, limit)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Div && hasClass(n, resultCardClass) {
			if res, ok := extractCard(n); ok {
				results = append(results, res)
			}
			// cards do not nest
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

func extractCard(card *html.Node) (models.SearchResult, bool) {
	anchor := findAnchor(card)
	if anchor == nil {
		return models.SearchResult{}, false
	}
	href := attrValue(anchor, "href")
	if href == "" {
		return models.SearchResult{}, false
	}

	return models.SearchResult{
		Title:   collapseSpace(textContent(anchor)),
		URL:     href,
		Snippet: collapseSpace(textContent(card)),
	}, true
}

// findAnchor returns the first <a> descendant carrying an href.
func findAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.A && attrValue(n, "href") != "" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := findAnchor(c); a != nil {
			return a
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, token := range strings.Fields(attrValue(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the concatenated text of all children.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
		b.WriteString(" ")
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package fetcher

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Content is what is kept of a fetched page besides its raw HTML.
type Content struct {
	Title       string
	Description string
	Text        string
	ContentHash string
}

// nonContentSelectors lists elements stripped before extracting text.
const nonContentSelectors = "script, style, noscript, nav, header, footer, template"

// Extract parses an HTML document.
func Extract(body []byte) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	c := &Content{
		Title:       pageTitle(doc),
		Description: metaDescription(doc),
		Text:        bodyText(doc),
	}
	c.ContentHash = hashHex([]byte(c.Text))
	return c, nil
}

func pageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

func metaDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	if og, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

// bodyText prefers <article> and falls back to <body>. Whitespace runs are
// collapsed to single spaces.
func bodyText(doc *goquery.Document) string {
	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	if sel.Length() == 0 {
		return ""
	}
	sel.Find(nonContentSelectors).Remove()
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func hashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

package collection

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy locates the authoritative date caption and bin heading in a parsed page.
// The boolean result is false when the element is absent.
type Strategy interface {
	DateText(doc *goquery.Document) (string, bool)
	BinTypeText(doc *goquery.Document) (string, bool)
}

// Default selectors for the council results page. The site lists the soonest
// collection container first, so the first match of each is authoritative.
const (
	DefaultCaptionSelector = "p.caption"
	DefaultHeadingSelector = "div.heading"
)

// FirstMatch picks the first element matching each CSS selector.
type FirstMatch struct {
	Caption string
	Heading string
}

// DefaultStrategy returns the selectors the council page uses today.
func DefaultStrategy() FirstMatch {
	return FirstMatch{Caption: DefaultCaptionSelector, Heading: DefaultHeadingSelector}
}

// DateText implements Strategy.
func (s FirstMatch) DateText(doc *goquery.Document) (string, bool) {
	return firstText(doc, s.Caption)
}

// BinTypeText implements Strategy.
func (s FirstMatch) BinTypeText(doc *goquery.Document) (string, bool) {
	return firstText(doc, s.Heading)
}

func firstText(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

var _ Strategy = FirstMatch{}

package collection

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPrefix is the literal the caption starts with before the date.
const DefaultPrefix = "Next collection"

// dateLayouts are tried in order against the caption text left after the prefix.
var dateLayouts = []string{
	"Monday, 02 January 2006",
	"Monday, 2 January 2006",
	"Monday 02 January 2006",
	"Monday 2 January 2006",
	"Mon, 2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02",
	"02/01/2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// Extractor turns a council results page into a Record.
// The zero value is not usable; build one with NewExtractor.
type Extractor struct {
	strategy Strategy
	prefix   *regexp.Regexp
	colours  map[string]Colour
	fallback Colour
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithStrategy replaces the element matching rule.
func WithStrategy(s Strategy) Option {
	return func(e *Extractor) { e.strategy = s }
}

// WithPrefix replaces the literal stripped from the caption before date parsing.
func WithPrefix(prefix string) Option {
	return func(e *Extractor) { e.prefix = prefixPattern(prefix) }
}

// WithColours adds or overrides heading to colour mappings.
func WithColours(table map[string]Colour) Option {
	return func(e *Extractor) {
		for k, v := range table {
			e.colours[k] = v
		}
	}
}

// NewExtractor builds an extractor for the current page layout.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		strategy: DefaultStrategy(),
		prefix:   prefixPattern(DefaultPrefix),
		colours: map[string]Colour{
			"Green Bin": Green,
			"Grey Bin":  BlackGrey,
		},
		fallback: BlackGrey,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// prefixPattern matches prefix only at the start of the caption.
func prefixPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*(?i)` + regexp.QuoteMeta(prefix))
}

// Extract parses html and returns the first collection on the page.
func (e *Extractor) Extract(html string) (Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Record{}, &ExtractionError{Reason: reasonParseHTML, Err: err}
	}

	date, err := e.date(doc)
	if err != nil {
		return Record{}, err
	}
	colour, err := e.colour(doc)
	if err != nil {
		return Record{}, err
	}
	return Record{Date: date, Colour: colour}, nil
}

func (e *Extractor) date(doc *goquery.Document) (time.Time, error) {
	raw, ok := e.strategy.DateText(doc)
	if !ok {
		return time.Time{}, &ExtractionError{Reason: reasonDateNotFound}
	}
	text := strings.TrimSpace(whitespace.ReplaceAllString(e.prefix.ReplaceAllLiteralString(raw, ""), " "))
	d, ok := ParseDate(text)
	if !ok {
		return time.Time{}, &ExtractionError{Reason: reasonUnparseable, Text: text}
	}
	return d, nil
}

func (e *Extractor) colour(doc *goquery.Document) (Colour, error) {
	heading, ok := e.strategy.BinTypeText(doc)
	if !ok {
		return e.fallback, &ExtractionError{Reason: reasonColourNotFound}
	}
	if c, found := e.colours[strings.TrimSpace(heading)]; found {
		return c, nil
	}
	return e.fallback, nil
}

// ParseDate reads a UK-style long date such as "Thursday, 22 January 2026".
// The result is midnight UTC of that calendar day.
func ParseDate(text string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

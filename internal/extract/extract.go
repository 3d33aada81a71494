// Package extract parses free-text Spanish transaction descriptions into
// structured fields. Extraction is heuristic and best-effort: every function
// returns a safe zero value instead of an error, so malformed input is
// indistinguishable from absent input.
package extract

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minAmount is the heuristic lower bound for a monetary figure. Smaller
// numbers are treated as incidental digits such as a day of month.
const minAmount = 1000

// Name spans shorter or longer than these bounds are rejected.
const (
	minNameLen = 2
	maxNameLen = 50
)

// ParsedLine carries the fields extracted from a single candidate line.
type ParsedLine struct {
	Amount       float64
	Type         TransactionType
	ClientName   string
	Concept      string
	PaymentTerms string
	Date         string
}

// Extractor runs the pattern tables over candidate lines. The zero value is
// not usable; construct with New.
type Extractor struct {
	patterns *Patterns
	now      func() time.Time
}

// New returns an Extractor over the given pattern tables. A nil patterns
// argument selects the defaults.
func New(patterns *Patterns) *Extractor {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Extractor{
		patterns: patterns,
		now:      time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (x *Extractor) WithNow(now func() time.Time) {
	if now != nil {
		x.now = now
	}
}

// Amount returns the first monetary figure of at least minAmount found under
// the highest-priority matching pattern, with thousands separators removed.
// It returns 0 when no pattern yields an acceptable figure.
func (x *Extractor) Amount(text string) float64 {
	clean := strings.Join(strings.Fields(text), " ")
	for _, re := range x.patterns.Amount {
		for _, match := range re.FindAllStringSubmatch(clean, -1) {
			if len(match) < 2 || match[1] == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
			if err != nil {
				continue
			}
			if value >= minAmount {
				return value
			}
		}
	}
	return 0
}

// ClientName returns a best-guess proper name from the line: the first
// pattern whose captured span, after stopword removal and title casing,
// lands strictly between minNameLen and maxNameLen characters. It returns ""
// when no pattern yields an acceptable name; callers substitute a generic
// placeholder.
func (x *Extractor) ClientName(text string) string {
	for _, re := range x.patterns.ClientName {
		match := re.FindStringSubmatch(text)
		if len(match) < 2 || match[1] == "" {
			continue
		}
		name := strings.TrimSpace(match[1])
		name = x.patterns.Stopwords.ReplaceAllString(name, "")
		name = strings.Join(strings.Fields(name), " ")
		// Casers are stateful, so one is built per call rather than shared.
		name = cases.Title(language.Spanish).String(name)
		if length := utf8.RuneCountInString(name); length > minNameLen && length < maxNameLen {
			return name
		}
	}
	return ""
}

// DetectType classifies the line. It is total: unmatched lines fall back to
// the default type rather than being rejected.
func (x *Extractor) DetectType(text string) TransactionType {
	for _, rule := range x.patterns.TypeRules {
		if rule.Pattern.MatchString(text) {
			return rule.Type
		}
	}
	return x.patterns.DefaultType
}

// Date stamps the line with the current calendar date in ISO form. The "hoy"
// keyword is recognised but relative-date parsing beyond it never landed, so
// both branches resolve to today.
func (x *Extractor) Date(text string) string {
	today := x.now().Format(time.DateOnly)
	if x.patterns.Today.MatchString(text) {
		return today
	}
	return today
}

// Concept maps keywords to a fixed concept phrase.
func (x *Extractor) Concept(text string) string {
	for _, rule := range x.patterns.ConceptRules {
		if rule.Pattern.MatchString(text) {
			return rule.Phrase
		}
	}
	return x.patterns.DefaultConcept
}

// PaymentTerms detects the supported payment-term keywords.
func (x *Extractor) PaymentTerms(text string) string {
	if x.patterns.Terms30.MatchString(text) {
		return "30 días"
	}
	if x.patterns.TermsCash.MatchString(text) {
		return "contado"
	}
	return ""
}

// Line runs all extractors over one candidate line.
func (x *Extractor) Line(text string) ParsedLine {
	return ParsedLine{
		Amount:       x.Amount(text),
		Type:         x.DetectType(text),
		ClientName:   x.ClientName(text),
		Concept:      x.Concept(text),
		PaymentTerms: x.PaymentTerms(text),
		Date:         x.Date(text),
	}
}

package extract

import "regexp"

// TransactionType classifies a parsed line.
type TransactionType string

const (
	TypeIncome     TransactionType = "income"
	TypeExpense    TransactionType = "expense"
	TypeAsset      TransactionType = "asset"
	TypeLiability  TransactionType = "liability"
	TypeEquity     TransactionType = "equity"
	TypeCollection TransactionType = "collection"
	TypePayment    TransactionType = "payment"
	TypeDiscount   TransactionType = "discount"
)

// TypeRule maps a keyword pattern to a transaction type. Rules are evaluated
// in order; the first match wins.
type TypeRule struct {
	Pattern *regexp.Regexp
	Type    TransactionType
}

// ConceptRule maps a keyword pattern to a fixed concept phrase.
type ConceptRule struct {
	Pattern *regexp.Regexp
	Phrase  string
}

// Patterns holds the injectable pattern tables driving extraction. Ordering
// is behavioural: earlier patterns take priority over later ones.
type Patterns struct {
	// Amount patterns each carry a single capture group holding a
	// thousands-separated decimal number.
	Amount []*regexp.Regexp

	// ClientName patterns each capture a candidate name span.
	ClientName []*regexp.Regexp
	// Stopwords strips Spanish articles, prepositions and conjunctions
	// from a captured name span.
	Stopwords *regexp.Regexp

	TypeRules   []TypeRule
	DefaultType TransactionType

	ConceptRules   []ConceptRule
	DefaultConcept string

	Today *regexp.Regexp

	Terms30   *regexp.Regexp
	TermsCash *regexp.Regexp
}

// DefaultPatterns returns the pattern tables for Spanish-language
// transaction descriptions.
func DefaultPatterns() *Patterns {
	return &Patterns{
		Amount: []*regexp.Regexp{
			regexp.MustCompile(`\$\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`),
			regexp.MustCompile(`(?i)por\s+valor\s+de\s+\$?\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`),
			regexp.MustCompile(`([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?)`),
		},
		ClientName: []*regexp.Regexp{
			regexp.MustCompile(`(?i)((?:distribuidora|casa|frank|supermercado|tienda|empresa|compañía)\s+[a-záéíóúñ\s]+?)(?:\s+(?:pagó|pago|realizó|abonó|devolvieron)|\s*,|$)`),
			regexp.MustCompile(`(?i)cliente\s+([a-záéíóúñ\s]+?)(?:\s+(?:pagó|pago|por)|\s*,|$)`),
			regexp.MustCompile(`(?i)([a-záéíóúñ\s]{3,25})\s+(?:pagó|pago|realizó|abonó|devolvieron)`),
		},
		Stopwords: regexp.MustCompile(`(?i)\b(por|de|del|la|el|en|con|para|que|se|un|una|y|a|o)\b`),
		TypeRules: []TypeRule{
			{Pattern: regexp.MustCompile(`(?i)abono|abonó|realizó\s+un\s+abono`), Type: TypeCollection},
			{Pattern: regexp.MustCompile(`(?i)descuento|devolución|devolvieron`), Type: TypeDiscount},
			{Pattern: regexp.MustCompile(`(?i)venta.*crédito|se.*vende|se.*realizó.*venta`), Type: TypeIncome},
		},
		DefaultType: TypeIncome,
		ConceptRules: []ConceptRule{
			{Pattern: regexp.MustCompile(`(?i)venta.*mercancía`), Phrase: "venta de mercancía"},
			{Pattern: regexp.MustCompile(`(?i)abono|abonó`), Phrase: "abono a cuenta"},
			{Pattern: regexp.MustCompile(`(?i)descuento.*devolución`), Phrase: "descuento y devolución de venta"},
		},
		DefaultConcept: "venta de mercancía",
		Today:          regexp.MustCompile(`(?i)hoy`),
		Terms30:        regexp.MustCompile(`(?i)30\s*días?`),
		TermsCash:      regexp.MustCompile(`(?i)contado|efectivo`),
	}
}

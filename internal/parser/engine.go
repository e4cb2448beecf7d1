package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rquispe/eecc-extractor/internal/models"
)

// Side says which column a single extracted amount belongs to.
type Side int

const (
	SideCargo Side = iota // debit, decreases balance
	SideAbono             // credit, increases balance
)

// DateLayout selects the output date format.
type DateLayout int

const (
	LayoutISO   DateLayout = iota // YYYY-MM-DD
	LayoutLatin                   // DD/MM/YYYY
)

// AmountMatch is a monetary substring located in a line remainder.
// Start is the byte offset within the remainder, used for positional
// classification and description stripping.
type AmountMatch struct {
	Text  string
	Start int
}

// SplitFunc decides whether a raw line is a transaction line and, if so,
// dissects it into the leading date token and the free-text remainder.
type SplitFunc func(line string) (dateTok, remainder string, ok bool)

// AmountFunc locates monetary substrings in the remainder, in order.
type AmountFunc func(remainder string) []AmountMatch

// ClassifyFunc assigns a single extracted amount to Cargo or Abono.
// It receives the cleaned description, the normalized value (0 when the
// amount failed to normalize), and the match position within the remainder.
type ClassifyFunc func(desc string, value float64, start, length int) Side

// YearFunc resolves the statement year for a document, given its whole
// first-page text. Computed once per document and applied uniformly.
type YearFunc func(firstPage string) string

// CommentRule maps narrative keywords to a category label. Rules are
// evaluated in order against the lower-cased description; the first
// match wins.
type CommentRule struct {
	Contains []string
	Prefixes []string
	Label    string
}

// Engine is the shared line-to-transaction core. The statement variants
// differ only in how lines are dissected, where amounts live, how a lone
// amount is classified, and how the year is obtained; each profile
// supplies those pieces and the engine does the rest.
type Engine struct {
	Split          SplitFunc
	Amounts        AmountFunc
	Classify       ClassifyFunc
	Year           YearFunc
	Layout         DateLayout
	Months         map[string]string
	Rules          []CommentRule
	DefaultComment string
}

// monthsES maps uppercase Spanish 3-letter month abbreviations to month
// numbers. SET is the form printed on the statements; SEP appears in the
// consolidated feed, so both are accepted.
var monthsES = map[string]string{
	"ENE": "01", "FEB": "02", "MAR": "03", "ABR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AGO": "08",
	"SET": "09", "SEP": "09", "OCT": "10", "NOV": "11", "DIC": "12",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	yearRe       = regexp.MustCompile(`\d{2}/\d{2}/(\d{2})`)
)

// Extract runs the engine over one document and returns its transactions
// in line order. Lines that don't classify, or that carry no amounts,
// are silently skipped; noisy source text makes both cases expected.
func (e *Engine) Extract(doc models.Document) []models.Transaction {
	year := e.Year(doc.FirstPage)
	var txns []models.Transaction
	for _, line := range doc.Lines {
		if txn, ok := e.extractLine(line, year, doc.Label); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

func (e *Engine) extractLine(line, year, account string) (models.Transaction, bool) {
	dateTok, rest, ok := e.Split(strings.TrimSpace(line))
	if !ok {
		return models.Transaction{}, false
	}

	matches := e.Amounts(rest)
	if len(matches) == 0 {
		// date-shaped line with no amounts is not a movement
		return models.Transaction{}, false
	}

	desc := stripAmounts(rest, matches)
	txn := models.Transaction{
		Date:        e.resolveDate(dateTok, year),
		Description: desc,
		Account:     account,
	}

	if len(matches) >= 2 {
		// Fixed positional convention: debit is printed before credit.
		txn.Cargo = amountValue(matches[0].Text)
		txn.Abono = amountValue(matches[1].Text)
	} else {
		m := matches[0]
		v, numeric := NormalizeAmount(m.Text)
		side := e.Classify(desc, v, m.Start, len(rest))
		// A non-numeric amount still selects a column; the cell stays empty.
		var val *float64
		if numeric {
			val = &v
		}
		if side == SideAbono {
			txn.Abono = val
		} else {
			txn.Cargo = val
		}
	}

	txn.Comment = tagComment(desc, e.Rules, e.DefaultComment)
	return txn, true
}

// resolveDate converts a date token like "01ABR" into a formatted date.
// Unknown month abbreviations fall back to "01"; that loses information
// on purpose rather than dropping the whole movement.
func (e *Engine) resolveDate(tok, year string) string {
	day, abbrev := splitDateToken(tok)
	month, known := e.Months[strings.ToUpper(abbrev)]
	if !known {
		month = "01"
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if e.Layout == LayoutLatin {
		return day + "/" + month + "/" + year
	}
	return year + "-" + month + "-" + day
}

// splitDateToken separates the leading day digits from the month letters.
func splitDateToken(tok string) (day, abbrev string) {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	day = tok[:i]
	abbrev = tok[i:]
	if len(abbrev) > 3 {
		abbrev = abbrev[:3]
	}
	return day, abbrev
}

// NormalizeAmount converts a grouped-decimal numeral to a float.
// When both separators appear the comma is a thousands separator; a lone
// comma is a decimal separator. A trailing hyphen negates the value.
// Returns false when the cleaned string is not numeric.
func NormalizeAmount(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	neg := strings.HasSuffix(s, "-")
	s = strings.TrimSuffix(s, "-")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

func amountValue(text string) *float64 {
	v, ok := NormalizeAmount(text)
	if !ok {
		return nil
	}
	return &v
}

// stripAmounts removes every occurrence of each matched amount substring
// from the remainder, then collapses whitespace. Removal is by literal
// text, so a description containing a numeral equal to an extracted
// amount gets over-stripped; accepted approximation.
func stripAmounts(rest string, matches []AmountMatch) string {
	desc := rest
	for _, m := range matches {
		desc = strings.ReplaceAll(desc, m.Text, "")
	}
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(desc), " ")
}

func tagComment(desc string, rules []CommentRule, fallback string) string {
	d := strings.ToLower(desc)
	for _, r := range rules {
		for _, kw := range r.Contains {
			if strings.Contains(d, kw) {
				return r.Label
			}
		}
		for _, p := range r.Prefixes {
			if strings.HasPrefix(d, p) {
				return r.Label
			}
		}
	}
	return fallback
}

// FixedYear returns a YearFunc that always resolves the given year.
func FixedYear(year string) YearFunc {
	return func(string) string { return year }
}

// InferYear finds a DD/MM/YY occurrence in the first-page text and takes
// its two-digit year, falling back to the current processing year.
func InferYear(firstPage string) string {
	if m := yearRe.FindStringSubmatch(firstPage); m != nil {
		return "20" + m[1]
	}
	return strconv.Itoa(time.Now().Year())
}

// PositionalClassifier classifies a lone amount by where it sits on the
// line: past the threshold fraction of the remainder it counts as a
// credit. Heuristic threshold standing in for missing column layout;
// subject to revision.
func PositionalClassifier(threshold float64) ClassifyFunc {
	return func(_ string, _ float64, start, length int) Side {
		if float64(start) > float64(length)*threshold {
			return SideAbono
		}
		return SideCargo
	}
}

// KeywordClassifier treats a lone amount as a credit when the
// description contains any of the given keywords.
func KeywordClassifier(creditKeywords ...string) ClassifyFunc {
	return func(desc string, _ float64, _, _ int) Side {
		d := strings.ToLower(desc)
		for _, kw := range creditKeywords {
			if strings.Contains(d, kw) {
				return SideAbono
			}
		}
		return SideCargo
	}
}

// SignClassifier treats negative amounts as credits. Used by the
// consolidated feed, where credits carry a trailing minus.
func SignClassifier() ClassifyFunc {
	return func(_ string, value float64, _, _ int) Side {
		if value < 0 {
			return SideAbono
		}
		return SideCargo
	}
}

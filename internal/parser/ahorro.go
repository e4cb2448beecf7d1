package parser

import (
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/rquispe/eecc-extractor/internal/models"
)

// AhorroParser handles savings-account statements recovered from OCR'd
// images.
//
// Statement lines anchor on a double date (value date + posting date):
//
//	"01ABR 01ABR TRAN.CTAS.TERC JUAN 150.00 20.00"
//
// Amounts appear anywhere in the remainder; a lone amount printed in the
// later part of the line is a credit.
type AhorroParser struct {
	engine *Engine
	logger *log.Logger
}

// ahorroLineRe matches the double-date anchor that distinguishes a
// movement line from headers, footers and OCR noise.
var ahorroLineRe = regexp.MustCompile(`^\d{2}[A-Z]{3}\s+\d{2}[A-Z]{3}`)

// ahorroAmountRe matches grouped-decimal numerals like "1,234.56" or
// "1234,56", with an optional trailing sign marker.
var ahorroAmountRe = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})*[.,]\d{2}-?`)

// creditPositionThreshold is the fraction of the remainder past which a
// lone amount counts as a credit. Heuristic, see PositionalClassifier.
const creditPositionThreshold = 0.6

func NewAhorro(logger *log.Logger) *AhorroParser {
	return &AhorroParser{
		engine: &Engine{
			Split:          splitAhorroLine,
			Amounts:        scanAmounts,
			Classify:       PositionalClassifier(creditPositionThreshold),
			Year:           FixedYear(DefaultYear),
			Layout:         LayoutISO,
			Months:         monthsES,
			Rules:          ahorroRules,
			DefaultComment: "Otro movimiento",
		},
		logger: logger,
	}
}

func (p *AhorroParser) ProfileName() string {
	return "Ahorro"
}

func (p *AhorroParser) Parse(docs []models.Document) (*models.StatementInfo, error) {
	return assemble(p.engine, models.ProfileAhorro, docs, p.logger), nil
}

// splitAhorroLine keeps the fixed offsets of the source layout: the date
// token is the first 5 characters and the remainder starts after both
// date tokens at column 12.
func splitAhorroLine(line string) (string, string, bool) {
	if !ahorroLineRe.MatchString(line) {
		return "", "", false
	}
	rest := ""
	if len(line) > 12 {
		rest = line[12:]
	}
	return line[:5], rest, true
}

// scanAmounts finds every grouped-decimal numeral in the remainder.
func scanAmounts(rest string) []AmountMatch {
	locs := ahorroAmountRe.FindAllStringIndex(rest, -1)
	matches := make([]AmountMatch, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, AmountMatch{Text: rest[loc[0]:loc[1]], Start: loc[0]})
	}
	return matches
}

// ahorroRules tags savings-account narratives. Order matters: "yape de"
// must win over the bare prefix rules below it.
var ahorroRules = []CommentRule{
	{Contains: []string{"yape de", "abon plin"}, Label: "Ingreso por app"},
	{Contains: []string{"yape a"}, Prefixes: []string{"plin-"}, Label: "Gasto por app"},
	{Contains: []string{"tran.ctas.terc"}, Label: "Abono por transferencia"},
	{Contains: []string{"tran.ctas.prop"}, Label: "Transferencia interna"},
	{Contains: []string{"bbva"}, Label: "Transferencia a BBVA"},
	{Contains: []string{"visa"}, Label: "Pago de tarjeta"},
	{Contains: []string{"retiro"}, Label: "Retiro en efectivo"},
	{Contains: []string{"spotify", "cabify"}, Label: "Gasto digital"},
	{Contains: []string{"itf", "mant."}, Label: "Gasto bancario"},
}

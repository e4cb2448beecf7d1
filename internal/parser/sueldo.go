package parser

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rquispe/eecc-extractor/internal/models"
)

// SueldoParser handles salary-account statement PDFs.
//
// The PDF text layer keeps columns as plain whitespace, so lines are
// recognized token-wise: the first two tokens are the same date repeated
// (value date and posting date coincide on this account). Amounts are
// the all-numeric tokens; everything else is the description.
type SueldoParser struct {
	engine *Engine
	logger *log.Logger
}

var (
	sueldoDateTokenRe = regexp.MustCompile(`^\d{2}[A-Z]{3}`)
	// numericTokenRe accepts any digit/comma/period token. Looser than the
	// grouped-decimal form on purpose: the salary feed prints plain
	// integers for some amounts.
	numericTokenRe = regexp.MustCompile(`^[\d,\.]+$`)
)

func NewSueldo(logger *log.Logger) *SueldoParser {
	return &SueldoParser{
		engine: &Engine{
			Split:   splitSueldoLine,
			Amounts: sueldoAmounts,
			// Salary deposits and advances are the only credits here.
			Classify:       KeywordClassifier("haber", "adelanto"),
			Year:           FixedYear(DefaultYear),
			Layout:         LayoutISO,
			Months:         monthsES,
			Rules:          sueldoRules,
			DefaultComment: "Movimiento bancario",
		},
		logger: logger,
	}
}

func (p *SueldoParser) ProfileName() string {
	return "Sueldo"
}

func (p *SueldoParser) Parse(docs []models.Document) (*models.StatementInfo, error) {
	return assemble(p.engine, models.ProfileSueldo, docs, p.logger), nil
}

func splitSueldoLine(line string) (string, string, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 || !sueldoDateTokenRe.MatchString(tokens[0]) || tokens[0] != tokens[1] {
		return "", "", false
	}
	return tokens[0], strings.Join(tokens[2:], " "), true
}

// sueldoAmounts walks the remainder token by token so each numeric token
// keeps its byte offset.
func sueldoAmounts(rest string) []AmountMatch {
	var matches []AmountMatch
	pos := 0
	for _, tok := range strings.Fields(rest) {
		start := strings.Index(rest[pos:], tok) + pos
		if numericTokenRe.MatchString(tok) {
			matches = append(matches, AmountMatch{Text: tok, Start: start})
		}
		pos = start + len(tok)
	}
	return matches
}

// sueldoRules tags salary-account narratives. "tran" deliberately also
// covers "transf" abbreviations.
var sueldoRules = []CommentRule{
	{Contains: []string{"haber"}, Label: "Depósito de sueldo"},
	{Contains: []string{"adelanto"}, Label: "Adelanto de sueldo"},
	{Contains: []string{"visa"}, Label: "Pago de tarjeta"},
	{Contains: []string{"transf", "tran"}, Label: "Transferencia entre cuentas"},
	{Contains: []string{"comis"}, Label: "Comisión por adelanto"},
	{Contains: []string{"cargo"}, Label: "Descuento por adelanto"},
}

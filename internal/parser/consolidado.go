package parser

import (
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/rquispe/eecc-extractor/internal/models"
)

// ConsolidadoParser handles the multi-account PDF feed that consolidates
// the savings, salary and credit-card statements into one run.
//
// Differences from the single-account profiles: days may be one digit
// and months mixed case, exactly one amount sits at the end of the line
// with a trailing minus marking credits, and the statement year is
// inferred from the first page instead of assumed.
type ConsolidadoParser struct {
	engine *Engine
	logger *log.Logger
}

var (
	consolidadoLineRe = regexp.MustCompile(`^(\d{1,2}[A-Za-z]{3})\s+\d{1,2}[A-Za-z]{3}\s+(.*)$`)
	tailAmountRe      = regexp.MustCompile(`(-?\d[\d,]*\.\d{2}-?)\s*$`)
)

func NewConsolidado(logger *log.Logger) *ConsolidadoParser {
	return &ConsolidadoParser{
		engine: &Engine{
			Split:    splitConsolidadoLine,
			Amounts:  tailAmount,
			Classify: SignClassifier(),
			Year:     InferYear,
			Layout:   LayoutLatin,
			Months:   monthsES,
			// The consolidated export has its own category column filled
			// downstream; no keyword tagging here.
			Rules:          nil,
			DefaultComment: "",
		},
		logger: logger,
	}
}

func (p *ConsolidadoParser) ProfileName() string {
	return "Consolidado"
}

func (p *ConsolidadoParser) Parse(docs []models.Document) (*models.StatementInfo, error) {
	return assemble(p.engine, models.ProfileConsolidado, docs, p.logger), nil
}

func splitConsolidadoLine(line string) (string, string, bool) {
	m := consolidadoLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// tailAmount matches the single amount anchored to the end of the line.
func tailAmount(rest string) []AmountMatch {
	loc := tailAmountRe.FindStringSubmatchIndex(rest)
	if loc == nil {
		return nil
	}
	return []AmountMatch{{Text: rest[loc[2]:loc[3]], Start: loc[2]}}
}

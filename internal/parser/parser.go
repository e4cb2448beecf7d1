package parser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rquispe/eecc-extractor/internal/models"
)

// DefaultYear is assumed when a profile does not infer the year from the
// document text.
const DefaultYear = "2025"

// Parser defines the interface for statement profile parsers.
type Parser interface {
	// Parse consumes documents in declared order and returns one ordered
	// collection of transactions.
	Parse(docs []models.Document) (*models.StatementInfo, error)
	// ProfileName returns the human-readable profile name.
	ProfileName() string
}

// New returns the parser for the given statement profile.
func New(profile models.Profile, logger *log.Logger) (Parser, error) {
	switch profile {
	case models.ProfileAhorro:
		return NewAhorro(logger), nil
	case models.ProfileSueldo:
		return NewSueldo(logger), nil
	case models.ProfileConsolidado:
		return NewConsolidado(logger), nil
	default:
		return nil, fmt.Errorf("unsupported statement profile: %q", profile)
	}
}

// AutoDetect tries to identify the statement profile from the documents.
// Multiple documents mean the consolidated multi-account feed; a single
// document is told apart by salary-account vocabulary versus the savings
// double-date lines.
func AutoDetect(docs []models.Document) (models.Profile, error) {
	if len(docs) > 1 {
		return models.ProfileConsolidado, nil
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("no documents to detect profile from")
	}

	combined := strings.ToUpper(strings.Join(docs[0].Lines, "\n"))
	if strings.Contains(combined, "HABER") || strings.Contains(combined, "SUELDO") ||
		strings.Contains(combined, "ADELANTO") {
		return models.ProfileSueldo, nil
	}
	for _, line := range docs[0].Lines {
		if ahorroLineRe.MatchString(strings.TrimSpace(line)) {
			return models.ProfileAhorro, nil
		}
	}
	return "", fmt.Errorf("could not auto-detect statement profile from content; please specify --profile")
}

// NewDocument builds a Document from per-page text, splitting pages into
// lines and keeping the first page whole for year inference.
func NewDocument(label string, pages []string) models.Document {
	doc := models.Document{Label: label}
	for _, page := range pages {
		doc.Lines = append(doc.Lines, strings.Split(page, "\n")...)
	}
	if len(pages) > 0 {
		doc.FirstPage = pages[0]
	}
	return doc
}

// assemble runs the engine over each document in order and concatenates
// the results. No deduplication, no sorting.
func assemble(e *Engine, profile models.Profile, docs []models.Document, logger *log.Logger) *models.StatementInfo {
	info := &models.StatementInfo{Profile: profile}
	for _, doc := range docs {
		txns := e.Extract(doc)
		if logger != nil {
			logger.Debug("document extracted", "label", doc.Label, "lines", len(doc.Lines), "transactions", len(txns))
		}
		if len(txns) == 0 {
			info.Warnings = append(info.Warnings, fmt.Sprintf("no transactions found in %q", doc.Label))
		}
		info.Transactions = append(info.Transactions, txns...)
	}
	return info
}

package models

// Transaction represents a single statement movement.
// Cargo (debit) and Abono (credit) are nil when the column is empty,
// which also covers amounts that failed to normalize.
type Transaction struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Cargo       *float64 `json:"cargo,omitempty"`
	Abono       *float64 `json:"abono,omitempty"`
	Comment     string   `json:"comment"`
	Account     string   `json:"account,omitempty"`
}

// Profile represents supported statement variants.
type Profile string

const (
	ProfileAhorro      Profile = "ahorro"      // savings account, OCR'd images
	ProfileSueldo      Profile = "sueldo"      // salary account PDF
	ProfileConsolidado Profile = "consolidado" // multi-account PDF feed
)

// Document is one input source already reduced to raw text lines.
// FirstPage carries the whole first-page text and is used only for
// year inference.
type Document struct {
	Label     string
	Lines     []string
	FirstPage string
}

// StatementInfo holds everything produced by one extraction run.
type StatementInfo struct {
	Profile      Profile
	Transactions []Transaction
	Warnings     []string
}

package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rquispe/eecc-extractor/internal/models"
)

// CSVWriter writes extracted transactions to CSV format.
type CSVWriter struct {
	IncludeHeader  bool // emit metadata comment rows before the table
	IncludeAccount bool // append the source-account column
}

// movementColumns is the column order of the movement layout. The
// spreadsheet consumer relies on this order.
var movementColumns = []string{"Fecha", "Descripción", "Cargo", "Abono", "Comentario"}

// consolidatedColumns is the fixed 12-column layout of the consolidated
// export.
var consolidatedColumns = []string{
	"FechaHora", "Tipo", "Importe", "Moneda", "CuentaOrigen", "CuentaDestino",
	"Categoría", "Etiquetas", "Nota", "Pagador", "FormaPago", "EstadoPago",
}

// WriteToFile writes transactions to a CSV file at the given path,
// picking the layout from the statement profile.
func (w *CSVWriter) WriteToFile(path string, info *models.StatementInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if info.Profile == models.ProfileConsolidado {
		return w.WriteConsolidated(f, info)
	}
	return w.Write(f, info)
}

// Write writes transactions in the movement layout.
func (w *CSVWriter) Write(out io.Writer, info *models.StatementInfo) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader && info.Profile != "" {
		writer.Write([]string{"# Perfil", string(info.Profile)})
	}

	header := movementColumns
	if w.IncludeAccount {
		header = append(append([]string{}, movementColumns...), "Cuenta")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range info.Transactions {
		row := []string{
			txn.Date,
			txn.Description,
			formatAmount(txn.Cargo),
			formatAmount(txn.Abono),
			txn.Comment,
		}
		if w.IncludeAccount {
			row = append(row, txn.Account)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// WriteConsolidated writes transactions in the 12-column consolidated
// layout. Importe is always positive; direction lives in Tipo, which is
// only filled for the credit-card account.
func (w *CSVWriter) WriteConsolidated(out io.Writer, info *models.StatementInfo) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if err := writer.Write(consolidatedColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range info.Transactions {
		row := []string{
			txn.Date + " 00:00", // the statements carry no time of day
			movementType(txn),
			formatImporte(txn),
			"PEN",
			txn.Account,
			"", // CuentaDestino
			txn.Comment,
			"", // Etiquetas
			txn.Description,
			"", // Pagador
			"", // FormaPago
			"", // EstadoPago
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// movementType labels credit-card movements as income or expense. The
// deposit accounts keep an empty Tipo in this layout.
func movementType(txn models.Transaction) string {
	if txn.Account != "Crédito" {
		return ""
	}
	if txn.Abono != nil {
		return "Ingreso"
	}
	return "Gasto"
}

func formatImporte(txn models.Transaction) string {
	v := txn.Cargo
	if v == nil {
		v = txn.Abono
	}
	if v == nil {
		return ""
	}
	amt := *v
	if amt < 0 {
		amt = -amt
	}
	return strconv.FormatFloat(amt, 'f', 2, 64)
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

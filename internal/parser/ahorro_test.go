package parser

import (
	"reflect"
	"testing"

	"github.com/rquispe/eecc-extractor/internal/models"
)

func TestSplitAhorroLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantTok  string
		wantRest string
		wantOK   bool
	}{
		{"movement line", "01ABR 01ABR TRAN.CTAS.TERC JUAN 150.00 20.00", "01ABR", "TRAN.CTAS.TERC JUAN 150.00 20.00", true},
		{"header line", "ESTADO DE CUENTA AHORRO", "", "", false},
		{"single date only", "01ABR TRAN.CTAS.TERC 150.00", "", "", false},
		{"bare double date", "01ABR 01ABR", "01ABR", "", true},
		{"empty line", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, rest, ok := splitAhorroLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tok != tt.wantTok || rest != tt.wantRest {
				t.Errorf("got (%q, %q), want (%q, %q)", tok, rest, tt.wantTok, tt.wantRest)
			}
		})
	}
}

func TestScanAmounts(t *testing.T) {
	matches := scanAmounts("CONSUMO 1,234.56 ALGO 45.00-")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Text != "1,234.56" || matches[0].Start != 8 {
		t.Errorf("first match: got %q at %d", matches[0].Text, matches[0].Start)
	}
	if matches[1].Text != "45.00-" {
		t.Errorf("second match: got %q, want %q", matches[1].Text, "45.00-")
	}

	if got := scanAmounts("SIN MONTOS AQUI"); got != nil {
		if len(got) != 0 {
			t.Errorf("expected no matches, got %v", got)
		}
	}
}

func TestAhorroParser_Parse(t *testing.T) {
	p := NewAhorro(nil)

	doc := models.Document{
		Label: "Ahorro",
		Lines: []string{
			"ESTADO DE CUENTA AHORRO SOLES",
			"01ABR 01ABR TRAN.CTAS.TERC JUAN 150.00 20.00",
			"02ABR 02ABR YAPE DE JUAN PEREZ                 50.00",
			"03ABR 03ABR 35.90 PAGO VISA CLASICA",
			"04ABR 04ABR SALDO ANTERIOR",
			"TOTAL MOVIMIENTOS 3",
		},
	}

	info, err := p.Parse([]models.Document{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The header, footer and the zero-amount date line produce nothing.
	if len(info.Transactions) != 3 {
		t.Fatalf("transactions: got %d, want 3", len(info.Transactions))
	}

	// Two amounts: first is Cargo, second is Abono.
	txn := info.Transactions[0]
	if txn.Date != "2025-04-01" {
		t.Errorf("txn[0].Date: got %q, want %q", txn.Date, "2025-04-01")
	}
	if txn.Description != "TRAN.CTAS.TERC JUAN" {
		t.Errorf("txn[0].Description: got %q, want %q", txn.Description, "TRAN.CTAS.TERC JUAN")
	}
	if txn.Cargo == nil || *txn.Cargo != 150.00 {
		t.Errorf("txn[0].Cargo: got %v, want 150.00", txn.Cargo)
	}
	if txn.Abono == nil || *txn.Abono != 20.00 {
		t.Errorf("txn[0].Abono: got %v, want 20.00", txn.Abono)
	}
	if txn.Comment != "Abono por transferencia" {
		t.Errorf("txn[0].Comment: got %q, want %q", txn.Comment, "Abono por transferencia")
	}

	// Lone amount printed late in the line: classified as Abono.
	txn = info.Transactions[1]
	if txn.Cargo != nil {
		t.Errorf("txn[1].Cargo: got %v, want nil", txn.Cargo)
	}
	if txn.Abono == nil || *txn.Abono != 50.00 {
		t.Errorf("txn[1].Abono: got %v, want 50.00", txn.Abono)
	}
	if txn.Comment != "Ingreso por app" {
		t.Errorf("txn[1].Comment: got %q, want %q", txn.Comment, "Ingreso por app")
	}

	// Lone amount printed early: classified as Cargo.
	txn = info.Transactions[2]
	if txn.Cargo == nil || *txn.Cargo != 35.90 {
		t.Errorf("txn[2].Cargo: got %v, want 35.90", txn.Cargo)
	}
	if txn.Abono != nil {
		t.Errorf("txn[2].Abono: got %v, want nil", txn.Abono)
	}
	if txn.Description != "PAGO VISA CLASICA" {
		t.Errorf("txn[2].Description: got %q, want %q", txn.Description, "PAGO VISA CLASICA")
	}
	if txn.Comment != "Pago de tarjeta" {
		t.Errorf("txn[2].Comment: got %q, want %q", txn.Comment, "Pago de tarjeta")
	}
}

func TestAhorroParser_Idempotent(t *testing.T) {
	p := NewAhorro(nil)
	docs := []models.Document{{
		Label: "Ahorro",
		Lines: []string{
			"01ABR 01ABR TRAN.CTAS.TERC JUAN 150.00 20.00",
			"02ABR 02ABR RETIRO CAJERO 100.00",
		},
	}}

	first, err := p.Parse(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Parse(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first.Transactions, second.Transactions) {
		t.Error("re-running extraction on identical input produced different output")
	}
}

func TestAhorroParser_MultipleDocumentsKeepOrder(t *testing.T) {
	p := NewAhorro(nil)
	docs := []models.Document{
		{Label: "img-1", Lines: []string{"01ABR 01ABR YAPE A MARIA 30.00 10.00"}},
		{Label: "img-2", Lines: []string{"02ABR 02ABR RETIRO CAJERO 100.00 5.00"}},
	}

	info, err := p.Parse(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(info.Transactions))
	}
	if info.Transactions[0].Account != "img-1" || info.Transactions[1].Account != "img-2" {
		t.Errorf("document order not preserved: %q then %q",
			info.Transactions[0].Account, info.Transactions[1].Account)
	}
}

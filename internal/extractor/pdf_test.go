package extractor

import (
	"strings"
	"testing"
)

func TestTextQuality(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		min   float64
		max   float64
	}{
		{"clean spanish text", []string{"Estado de cuenta en soles, saldo 1,234.56, operación número 7"}, 0.9, 1.0},
		{"accented letters are readable", []string{"Descripción Comisión Crédito Año"}, 0.99, 1.0},
		{"binary garbage", []string{"\x00\x01\x02\x03\x04\x05\x06\x07\x08\x0e\x0f\x10\x11\x12"}, 0.0, 0.1},
		{"empty input", nil, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textQuality(tt.pages)
			if got < tt.min || got > tt.max {
				t.Errorf("textQuality = %f, want within [%f, %f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestContainsCommonWords(t *testing.T) {
	if !containsCommonWords([]string{"ESTADO DE CUENTA - BANCO"}) {
		t.Error("expected statement vocabulary to be recognized")
	}
	if !containsCommonWords([]string{"fecha de operación y saldo contable"}) {
		t.Error("expected lowercase vocabulary to be recognized")
	}
	if containsCommonWords([]string{"lorem ipsum dolor sit amet"}) {
		t.Error("expected unrelated text to be rejected")
	}
}

func TestIsReadableText(t *testing.T) {
	goodPage := "Estado de cuenta de ahorro en soles\n" +
		"Fecha  Descripción  Cargo  Abono  Saldo\n" +
		"01ABR 01ABR TRAN.CTAS.TERC JUAN 150.00 20.00"

	if !IsReadableText([]string{goodPage}) {
		t.Error("expected a real statement page to be readable")
	}

	// Too short even though readable.
	if IsReadableText([]string{"saldo"}) {
		t.Error("expected short text to be rejected")
	}

	// Long and ASCII-clean but with no statement vocabulary:
	// likely garbage from an identity-encoded font.
	filler := strings.Repeat("xyzw qrst ", 20)
	if IsReadableText([]string{filler}) {
		t.Error("expected text without statement vocabulary to be rejected")
	}
}

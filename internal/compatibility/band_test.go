package compatibility

import "testing"

func TestBandFor(t *testing.T) {
	tests := []struct {
		score int
		band  Band
		label string
	}{
		{100, BandHigh, "Alta compatibilidade"},
		{80, BandHigh, "Alta compatibilidade"},
		{79, BandMedium, "Compatibilidade média"},
		{60, BandMedium, "Compatibilidade média"},
		{59, BandLow, "Compatibilidade baixa"},
		{40, BandLow, "Compatibilidade baixa"},
		{39, BandVeryLow, "Baixa compatibilidade"},
		{0, BandVeryLow, "Baixa compatibilidade"},
	}

	for _, tt := range tests {
		band := BandFor(tt.score)
		if band != tt.band {
			t.Fatalf("score %d: expected band %q, got %q", tt.score, tt.band, band)
		}
		if band.Label() != tt.label {
			t.Fatalf("score %d: expected label %q, got %q", tt.score, tt.label, band.Label())
		}
	}
}

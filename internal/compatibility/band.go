package compatibility

// Band groups scores the way the job list badges do.
type Band string

const (
	BandHigh    Band = "high"
	BandMedium  Band = "medium"
	BandLow     Band = "low"
	BandVeryLow Band = "very_low"
)

func BandFor(score int) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	case score >= 40:
		return BandLow
	default:
		return BandVeryLow
	}
}

// Label is the user-facing text shown next to the score.
func (b Band) Label() string {
	switch b {
	case BandHigh:
		return "Alta compatibilidade"
	case BandMedium:
		return "Compatibilidade média"
	case BandLow:
		return "Compatibilidade baixa"
	default:
		return "Baixa compatibilidade"
	}
}

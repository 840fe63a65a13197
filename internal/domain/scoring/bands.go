package scoring

import "github.com/okian/talentlens/internal/domain/model"

// Band is a qualitative label for a score range starting at Min (inclusive).
type Band struct {
	Min   float64 `json:"min"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// DefaultBands returns the score band table, highest band first.
// A fresh slice is returned on every call.
func DefaultBands() []Band {
	return []Band{
		{Min: 90, Label: "Excellent", Color: "green"},
		{Min: 80, Label: "Very Good", Color: "emerald"},
		{Min: 70, Label: "Good", Color: "blue"},
		{Min: 60, Label: "Average", Color: "yellow"},
		{Min: 50, Label: "Below Average", Color: "orange"},
		{Min: 0, Label: "Poor", Color: "red"},
	}
}

// ScoreBand drops the lower bound, leaving what a profile displays.
func (b Band) ScoreBand() model.ScoreBand {
	return model.ScoreBand{Label: b.Label, Color: b.Color}
}

// ClassifyBand maps score to its band in the default table.
func ClassifyBand(score float64) Band {
	return ClassifyBandWith(score, DefaultBands())
}

// ClassifyBandWith maps score to the first band (in table order) whose lower
// bound it reaches. Scores below every bound fall into the last band.
func ClassifyBandWith(score float64, bands []Band) Band {
	if len(bands) == 0 {
		return Band{}
	}
	for _, b := range bands {
		if score >= b.Min {
			return b
		}
	}
	return bands[len(bands)-1]
}

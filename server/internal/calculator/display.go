package calculator

import (
	"strconv"
	"strings"

	"github.com/geordievannese/garuda-calculator/server/internal/models"
)

const (
	// Placeholder is shown wherever a value is absent.
	Placeholder = "—"
	// LogitPlaceholder fills the logit slot; the prediction response carries no logits.
	LogitPlaceholder = "-"
	// AlertMessage is shown when the prediction endpoint fails.
	AlertMessage = "Server error. Check console/logs."
)

// DerivedView is the text shown in the three derived-field slots.
type DerivedView struct {
	GCSLt15 string
	DNRatio string
	NeckGt4 string
}

// AbsentDerived is the derived display before any prediction.
func AbsentDerived() DerivedView {
	return DerivedView{GCSLt15: Placeholder, DNRatio: Placeholder, NeckGt4: Placeholder}
}

// DerivedViewOf formats derived fields for display.
func DerivedViewOf(d models.DerivedFields) DerivedView {
	return DerivedView{
		GCSLt15: d.GCSLt15.Text(Placeholder),
		DNRatio: d.DNRatio.Text(Placeholder),
		NeckGt4: d.NeckGt4.Text(Placeholder),
	}
}

// ResultCard is the display model of one outcome.
type ResultCard struct {
	Key      string
	Title    string
	Modality string
	Measure  string
	Percent  models.NullFloat64
	Logit    string
	AUC      float64
	Missing  []string
}

// NewResultCard builds a card from its display fields.
func NewResultCard(o Outcome, percent models.NullFloat64, logit string, missing []string) ResultCard {
	return ResultCard{
		Key:      o.Key,
		Title:    o.Title,
		Modality: o.Modality,
		Measure:  o.Measure,
		Percent:  percent,
		Logit:    logit,
		AUC:      o.AUC,
		Missing:  missing,
	}
}

// PercentText is the percentage with its unit, or the placeholder.
func (c ResultCard) PercentText() string {
	if !c.Percent.Valid {
		return Placeholder
	}
	return c.Percent.Text(Placeholder) + "%"
}

// AUCText formats the AUC badge value exactly as catalogued.
func (c ResultCard) AUCText() string {
	return strconv.FormatFloat(c.AUC, 'f', -1, 64)
}

// AllPresent reports whether no predictor was reported missing.
func (c ResultCard) AllPresent() bool {
	return len(c.Missing) == 0
}

// MissingText joins the missing predictors for display.
func (c ResultCard) MissingText() string {
	return strings.Join(c.Missing, ", ")
}

// Cards builds the six result cards for a prediction. The response carries no
// logits and no missing-predictor list, so those slots are always placeholders.
func Cards(p models.PredictionResult) []ResultCard {
	cards := make([]ResultCard, 0, len(Outcomes))
	for _, o := range Outcomes {
		cards = append(cards, NewResultCard(o, o.Value(p), LogitPlaceholder, nil))
	}
	return cards
}

package calculator

import "github.com/geordievannese/garuda-calculator/server/internal/models"

// Outcome is one model output shown as a result card. AUC describes the
// model's discrimination and is fixed per outcome, not supplied by the server.
type Outcome struct {
	Key      string
	Title    string
	Measure  string
	Modality string
	AUC      float64
}

// Outcomes is the catalog of result cards, in display order.
var Outcomes = []Outcome{
	{Key: "mortality_coil", Title: "Mortality if COIL", Measure: "Mortality", Modality: "COIL", AUC: 0.826},
	{Key: "mortality_clip", Title: "Mortality if CLIP", Measure: "Mortality", Modality: "CLIP", AUC: 0.815},
	{Key: "good_gose_coil", Title: "Good GOSE (5–8) if COIL", Measure: "Good GOSE (5–8)", Modality: "COIL", AUC: 0.707},
	{Key: "good_gose_clip", Title: "Good GOSE (5–8) if CLIP", Measure: "Good GOSE (5–8)", Modality: "CLIP", AUC: 0.793},
	{Key: "gcs_recovery_coil", Title: "GCS baseline if COIL", Measure: "GCS baseline", Modality: "COIL", AUC: 0.768},
	{Key: "gcs_recovery_clip", Title: "GCS baseline if CLIP", Measure: "GCS baseline", Modality: "CLIP", AUC: 0.765},
}

// AUCFor returns the AUC of an outcome key.
func AUCFor(key string) (float64, bool) {
	for _, o := range Outcomes {
		if o.Key == key {
			return o.AUC, true
		}
	}
	return 0, false
}

// Value picks this outcome's percentage out of a prediction.
func (o Outcome) Value(p models.PredictionResult) models.NullFloat64 {
	switch o.Key {
	case "mortality_coil":
		return p.MortalityCoil
	case "mortality_clip":
		return p.MortalityClip
	case "good_gose_coil":
		return p.GoodGoseCoil
	case "good_gose_clip":
		return p.GoodGoseClip
	case "gcs_recovery_coil":
		return p.GCSRecoveryCoil
	case "gcs_recovery_clip":
		return p.GCSRecoveryClip
	}
	return models.NullFloat64{}
}

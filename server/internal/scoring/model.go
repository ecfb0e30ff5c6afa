package scoring

import (
	"math"

	"github.com/geordievannese/garuda-calculator/server/internal/models"
)

// Coefficients of the six logistic models. Each outcome is sigmoid(intercept + sum(coef*x)).
const (
	mortalityCoilIntercept   = -5.073
	mortalityClipIntercept   = -1.198
	goodGoseCoilIntercept    = 2.19
	goodGoseClipIntercept    = 2.781
	gcsRecoveryCoilIntercept = 3.198
	gcsRecoveryClipIntercept = 3.334
)

var locationCoefficients = map[string]float64{
	"acha":    1.272,
	"acom":    -0.608,
	"basilar": 0.383,
	"ica":     -0.019,
	"mca":     -1.061,
	"pcoa":    -0.411,
}

// predictors are the model inputs with missing values replaced by 0.
type predictors struct {
	age, gcs, dome, neck                       float64
	htn, cvd, smoke, fam, wfns, hemi, rupt, dm float64
	daughter, ptosis, seizure, multiple, iom   float64
	gcsLt15, dnRatio, neckGt4, location        float64
	hasGCS, hasDome, hasNeck                   bool
}

func floatOrZero(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func intOrZero(p *int) float64 {
	if p == nil {
		return 0
	}
	return float64(*p)
}

func newPredictors(in *Input) predictors {
	var p predictors
	p.age, _ = floatOrZero(in.Age)
	p.dome, p.hasDome = floatOrZero(in.Dome)
	p.neck, p.hasNeck = floatOrZero(in.Neck)
	if in.GCS != nil {
		p.gcs, p.hasGCS = float64(*in.GCS), true
	}

	p.htn = intOrZero(in.HTN)
	p.cvd = intOrZero(in.CVD)
	p.smoke = intOrZero(in.Smoke)
	p.fam = intOrZero(in.FamHist)
	p.wfns = intOrZero(in.WFNS)
	p.hemi = intOrZero(in.Hemiparesis)
	p.rupt = intOrZero(in.Ruptured)
	p.dm = intOrZero(in.DM)
	p.daughter = intOrZero(in.Daughter)
	p.ptosis = intOrZero(in.Ptosis)
	p.seizure = intOrZero(in.Seizure)
	p.multiple = intOrZero(in.Multiple)
	p.iom = intOrZero(in.IOM)

	if p.hasGCS && p.gcs <= 14 {
		p.gcsLt15 = 1
	}
	if p.hasDome && p.hasNeck && p.neck > 0 {
		p.dnRatio = p.dome / p.neck
	}
	if p.hasNeck && p.neck > 4 {
		p.neckGt4 = 1
	}
	if in.Location != nil {
		p.location = locationCoefficients[*in.Location]
	}
	return p
}

// Compute scores one patient. It does not validate in; call Validate first.
func Compute(in *Input) *models.PredictionResponse {
	p := newPredictors(in)

	z := [6]float64{
		mortalityCoilIntercept + 0.022*p.age + 1.008*p.htn + 0.525*p.wfns + 0.061*p.dome,
		mortalityClipIntercept - 0.019*p.age + 1.678*p.cvd - 1.878*p.smoke + 2.157*p.fam + 1.653*p.gcsLt15 -
			1.119*p.iom + 0.059*p.dome - 0.233*p.dnRatio,
		goodGoseCoilIntercept - 0.013*p.age - 0.626*p.hemi - 0.493*p.wfns - 0.703*p.rupt,
		goodGoseClipIntercept - 0.043*p.age + 1.439*p.dm - 1.363*p.gcsLt15 + p.location - 0.856*p.daughter,
		gcsRecoveryCoilIntercept - 0.033*p.age - 1.143*p.dm - 0.94*p.ptosis - 0.977*p.seizure + 0.621*p.multiple -
			0.029*p.dome - 0.232*p.dnRatio,
		gcsRecoveryClipIntercept - 0.033*p.age - 1.0*p.cvd - 0.517*p.gcsLt15 + 0.843*p.iom - 1.542*p.rupt -
			0.179*p.dome + 0.646*p.neckGt4,
	}

	var pct [6]models.NullFloat64
	for i, zi := range z {
		pct[i] = models.Float64Of(round(sigmoid(zi)*100, 1))
	}

	resp := &models.PredictionResponse{
		PredictionResult: models.PredictionResult{
			MortalityCoil:   pct[0],
			MortalityClip:   pct[1],
			GoodGoseCoil:    pct[2],
			GoodGoseClip:    pct[3],
			GCSRecoveryCoil: pct[4],
			GCSRecoveryClip: pct[5],
		},
	}
	if p.hasGCS {
		resp.Derived.GCSLt15 = models.BoolOf(p.gcsLt15 == 1)
	}
	if p.hasDome && p.hasNeck && p.neck > 0 {
		resp.Derived.DNRatio = models.Float64Of(round(p.dnRatio, 2))
	}
	if p.hasNeck {
		resp.Derived.NeckGt4 = models.BoolOf(p.neckGt4 == 1)
	}
	return resp
}

// sigmoid avoids overflow of exp for large |z|.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}

// round rounds half to even, matching the published model's reference outputs.
func round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(x*scale) / scale
}

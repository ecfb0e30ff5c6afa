package scoring

import (
	"encoding/json"
	"testing"

	"github.com/geordievannese/garuda-calculator/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) *Input {
	t.Helper()
	var in Input
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return &in
}

func percents(r *models.PredictionResponse) []float64 {
	return []float64{
		r.MortalityCoil.Float64, r.MortalityClip.Float64,
		r.GoodGoseCoil.Float64, r.GoodGoseClip.Float64,
		r.GCSRecoveryCoil.Float64, r.GCSRecoveryClip.Float64,
	}
}

func TestCompute_AllMissing(t *testing.T) {
	resp := Compute(decode(t, `{}`))

	assert.InDeltaSlice(t, []float64{0.6, 23.2, 89.9, 94.2, 96.1, 96.6}, percents(resp), 1e-9)
	assert.False(t, resp.Derived.GCSLt15.Valid)
	assert.False(t, resp.Derived.DNRatio.Valid)
	assert.False(t, resp.Derived.NeckGt4.Valid)
}

func TestCompute_FullPatient(t *testing.T) {
	body := `{"age":55,"gcs":13,"wfns":2,"htn":1,"dm":null,"cvd":0,"smoke":0,"famHist":null,
		"ruptured":1,"hemiparesis":null,"ptosis":null,"seizure":null,"multiple":null,"iom":null,
		"location":"acom","dome":7,"neck":3.5}`
	resp := Compute(decode(t, body))

	assert.InDeltaSlice(t, []float64{20.1, 34.5, 44.7, 17.4, 67.2, 14.3}, percents(resp), 1e-9)
	assert.Equal(t, models.BoolOf(true), resp.Derived.GCSLt15)
	assert.Equal(t, models.Float64Of(2), resp.Derived.DNRatio)
	assert.Equal(t, models.BoolOf(false), resp.Derived.NeckGt4)
}

func TestCompute_DerivedThresholds(t *testing.T) {
	resp := Compute(decode(t, `{"gcs":15,"neck":4.5,"dome":9}`))
	assert.Equal(t, models.BoolOf(false), resp.Derived.GCSLt15)
	assert.Equal(t, models.BoolOf(true), resp.Derived.NeckGt4)
	assert.Equal(t, models.Float64Of(2), resp.Derived.DNRatio)

	// A zero neck has no ratio.
	resp = Compute(decode(t, `{"dome":5,"neck":0}`))
	assert.False(t, resp.Derived.DNRatio.Valid)
	assert.Equal(t, models.BoolOf(false), resp.Derived.NeckGt4)
}

func TestCompute_UnknownLocationIsNeutral(t *testing.T) {
	known := Compute(decode(t, `{"location":"ica"}`))
	unknown := Compute(decode(t, `{"location":"vertebral"}`))
	none := Compute(decode(t, `{}`))

	assert.Equal(t, none.GoodGoseClip, unknown.GoodGoseClip)
	assert.NotEqual(t, none.GoodGoseClip.Float64, 0.0)
	assert.True(t, known.GoodGoseClip.Valid)
}

func TestSigmoid_Stable(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
	assert.InDelta(t, 1.0, sigmoid(800), 1e-12)
	assert.InDelta(t, 0.0, sigmoid(-800), 1e-12)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, decode(t, `{"age":120,"gcs":3,"dome":50,"neck":0}`).Validate())
	assert.NoError(t, decode(t, `{}`).Validate())

	err := decode(t, `{"age":130,"gcs":2,"neck":21}`).Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 3)
	assert.Contains(t, verr.Error(), "age must be <= 120")
	assert.Contains(t, verr.Error(), "gcs must be >= 3")
}

func TestInput_RejectsFractionalGCS(t *testing.T) {
	var in Input
	assert.Error(t, json.Unmarshal([]byte(`{"gcs":14.5}`), &in))
}

func TestCompute_RatioTiesRoundToEven(t *testing.T) {
	tests := []struct {
		body string
		want float64
	}{
		{`{"dome":1,"neck":8}`, 0.12},
		{`{"dome":5,"neck":8}`, 0.62},
		{`{"dome":3,"neck":8}`, 0.38},
		{`{"dome":7,"neck":8}`, 0.88},
	}
	for _, tt := range tests {
		resp := Compute(decode(t, tt.body))
		require.True(t, resp.Derived.DNRatio.Valid, tt.body)
		assert.Equal(t, tt.want, resp.Derived.DNRatio.Float64, tt.body)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.12, round(0.125, 2))
	assert.Equal(t, 0.38, round(0.375, 2))
	assert.Equal(t, 2.0, round(2.5, 0))
	assert.Equal(t, 4.0, round(3.5, 0))
	assert.Equal(t, 12.3, round(12.34, 1))
}

package models

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

func TestNullBool_Unmarshal(t *testing.T) {
	cases := map[string]NullBool{
		"true":  BoolOf(true),
		"false": BoolOf(false),
		"1":     BoolOf(true),
		"1.0":   BoolOf(true),
		"0":     BoolOf(false),
		"null":  {},
	}
	for in, want := range cases {
		var got NullBool
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		assert.Equal(t, want, got, in)
	}

	var bad NullBool
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &bad))
}

func TestNullBool_Text(t *testing.T) {
	assert.Equal(t, "Yes", BoolOf(true).Text("—"))
	assert.Equal(t, "No", BoolOf(false).Text("—"))
	assert.Equal(t, "—", NullBool{}.Text("—"))
}

func TestNullFloat64_RoundTrip(t *testing.T) {
	var nf NullFloat64
	require.NoError(t, json.Unmarshal([]byte("2.57"), &nf))
	assert.True(t, nf.Valid)
	assert.Equal(t, "2.57", nf.Text("—"))

	require.NoError(t, json.Unmarshal([]byte("null"), &nf))
	assert.False(t, nf.Valid)
	assert.Equal(t, "—", nf.Text("—"))

	b, err := json.Marshal(NullFloat64{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestPredictionResponse_MissingKeysAreAbsent(t *testing.T) {
	var resp PredictionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"mortality_coil": 12.5}`), &resp))

	assert.True(t, resp.MortalityCoil.Valid)
	assert.Equal(t, 12.5, resp.MortalityCoil.Float64)
	assert.False(t, resp.MortalityClip.Valid)
	assert.False(t, resp.Derived.GCSLt15.Valid)
	assert.False(t, resp.Derived.DNRatio.Valid)
}

func TestPredictionResponse_NumericFlags(t *testing.T) {
	body := `{"derived":{"gcs_lt15":1.0,"dn_ratio":2.0,"neck_gt4":0.0},"gcs_recovery_clip":14.3}`
	var resp PredictionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Equal(t, "Yes", resp.Derived.GCSLt15.Text("—"))
	assert.Equal(t, "2", resp.Derived.DNRatio.Text("—"))
	assert.Equal(t, "No", resp.Derived.NeckGt4.Text("—"))
	assert.Equal(t, 14.3, resp.GCSRecoveryClip.Float64)
}

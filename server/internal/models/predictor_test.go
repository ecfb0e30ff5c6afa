package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_MarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"absent", Absent(), "null"},
		{"zero is not absent", Number(0), "0"},
		{"integer", Number(55), "55"},
		{"fraction", Number(3.5), "3.5"},
		{"nan", Number(math.NaN()), "null"},
		{"text", Text("acom"), `"acom"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(b))
		})
	}
}

func TestPredictorRecord_AllKeysPresent(t *testing.T) {
	rec := NewPredictorRecord(func(string) Value { return Absent() })

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))

	assert.Len(t, decoded, len(PredictorFields))
	for _, id := range PredictorFields {
		v, ok := decoded[id]
		assert.True(t, ok, "missing key %s", id)
		assert.Nil(t, v, "key %s should be null", id)
	}
}

func TestPredictorRecord_WireOrder(t *testing.T) {
	rec := NewPredictorRecord(func(id string) Value { return Text(id) })
	b, err := json.Marshal(rec)
	require.NoError(t, err)

	dec := json.NewDecoder(bytesReader(b))
	_, err = dec.Token() // {
	require.NoError(t, err)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		_, err = dec.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, PredictorFields, keys)
}

func TestPredictorRecord_Get(t *testing.T) {
	rec := NewPredictorRecord(func(id string) Value {
		if id == "neck" {
			return Number(4.5)
		}
		return Absent()
	})

	f, ok := rec.Get("neck").Float()
	assert.True(t, ok)
	assert.Equal(t, 4.5, f)
	assert.True(t, rec.Get("age").IsAbsent())
	assert.True(t, rec.Get("daughter").IsAbsent())
}

func TestGroupOf(t *testing.T) {
	assert.Equal(t, GroupNumeric, GroupOf("age"))
	assert.Equal(t, GroupCategory, GroupOf("famHist"))
	assert.Equal(t, GroupCategory, GroupOf("daughter"))
	assert.Equal(t, GroupLocation, GroupOf("location"))
	assert.Equal(t, GroupOther, GroupOf("notes"))
}

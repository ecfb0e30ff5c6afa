package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

// NullFloat64 is a nullable number in JSON and in the database.
type NullFloat64 struct {
	sql.NullFloat64
}

// Float64Of returns a valid NullFloat64.
func Float64Of(f float64) NullFloat64 {
	return NullFloat64{sql.NullFloat64{Float64: f, Valid: true}}
}

// MarshalJSON writes null when the value is not set.
func (nf NullFloat64) MarshalJSON() ([]byte, error) {
	if !nf.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nf.Float64)
}

// UnmarshalJSON accepts a number or null.
func (nf *NullFloat64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		nf.Float64, nf.Valid = 0, false
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("expected number or null, got %s", data)
	}
	nf.Float64, nf.Valid = f, true
	return nil
}

// Text renders the literal number, or placeholder when unset.
func (nf NullFloat64) Text(placeholder string) string {
	if !nf.Valid {
		return placeholder
	}
	return strconv.FormatFloat(nf.Float64, 'f', -1, 64)
}

// NullBool is a nullable flag. Besides true/false it decodes the 0/1 numbers some
// scoring backends emit for threshold flags.
type NullBool struct {
	sql.NullBool
}

// BoolOf returns a valid NullBool.
func BoolOf(b bool) NullBool {
	return NullBool{sql.NullBool{Bool: b, Valid: true}}
}

func (nb NullBool) MarshalJSON() ([]byte, error) {
	if !nb.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nb.Bool)
}

func (nb *NullBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		nb.Bool, nb.Valid = false, false
	case bytes.Equal(data, []byte("true")):
		nb.Bool, nb.Valid = true, true
	case bytes.Equal(data, []byte("false")):
		nb.Bool, nb.Valid = false, true
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("expected boolean, number or null, got %s", data)
		}
		nb.Bool, nb.Valid = f != 0, true
	}
	return nil
}

// Text renders Yes/No, or placeholder when unset.
func (nb NullBool) Text(placeholder string) string {
	switch {
	case !nb.Valid:
		return placeholder
	case nb.Bool:
		return "Yes"
	default:
		return "No"
	}
}

package scoring

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input is the body accepted by the prediction API. Pointers are nil when the
// client sent null or left the key out.
type Input struct {
	Age  *float64 `json:"age" validate:"omitempty,gte=0,lte=120"`
	GCS  *int     `json:"gcs" validate:"omitempty,gte=3,lte=15"`
	Dome *float64 `json:"dome" validate:"omitempty,gte=0,lte=50"`
	Neck *float64 `json:"neck" validate:"omitempty,gte=0,lte=20"`

	HTN         *int    `json:"htn"`
	CVD         *int    `json:"cvd"`
	Smoke       *int    `json:"smoke"`
	FamHist     *int    `json:"famHist"`
	WFNS        *int    `json:"wfns"`
	Hemiparesis *int    `json:"hemiparesis"`
	Ruptured    *int    `json:"ruptured"`
	DM          *int    `json:"dm"`
	Location    *string `json:"location"`
	Daughter    *int    `json:"daughter"`
	Ptosis      *int    `json:"ptosis"`
	Seizure     *int    `json:"seizure"`
	Multiple    *int    `json:"multiple"`
	IOM         *int    `json:"iom"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the range constraints on the continuous predictors.
func (in *Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must be %s %s", strings.ToLower(fe.Field()), opWord(fe.Tag()), fe.Param()))
	}
	return &ValidationError{Messages: msgs}
}

func opWord(tag string) string {
	switch tag {
	case "gte":
		return ">="
	case "lte":
		return "<="
	}
	return tag
}

// ValidationError lists every out-of-range predictor.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Messages, "; ")
}

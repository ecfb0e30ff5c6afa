package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DerivedFields are computed by the scoring service from the raw predictors.
type DerivedFields struct {
	GCSLt15 NullBool    `json:"gcs_lt15"`
	DNRatio NullFloat64 `json:"dn_ratio"`
	NeckGt4 NullBool    `json:"neck_gt4"`
}

// PredictionResult holds the six outcome percentages.
type PredictionResult struct {
	MortalityCoil   NullFloat64 `json:"mortality_coil"`
	MortalityClip   NullFloat64 `json:"mortality_clip"`
	GoodGoseCoil    NullFloat64 `json:"good_gose_coil"`
	GoodGoseClip    NullFloat64 `json:"good_gose_clip"`
	GCSRecoveryCoil NullFloat64 `json:"gcs_recovery_coil"`
	GCSRecoveryClip NullFloat64 `json:"gcs_recovery_clip"`
}

// PredictionResponse is the body returned by POST /api/predict.
type PredictionResponse struct {
	Derived DerivedFields `json:"derived"`
	PredictionResult
}

// PredictionLog is one prediction served by the API.
type PredictionLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	ClientIP  string    `json:"client_ip"`
	Request   string    `gorm:"type:text" json:"request"`

	GCSLt15 NullBool    `json:"gcs_lt15"`
	DNRatio NullFloat64 `json:"dn_ratio"`
	NeckGt4 NullBool    `json:"neck_gt4"`
	PredictionResult
}

// TableName sets the table name.
func (PredictionLog) TableName() string {
	return "prediction_logs"
}

// BeforeCreate assigns the ID before insert.
func (p *PredictionLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Discharge marks a patient's terminal state transition. A patient can
// be discharged at most once.
type Discharge struct {
	Base
	PatientID     uuid.UUID `json:"patient_id" db:"patient_id"`
	Discharged    bool      `json:"discharged" db:"discharged"`
	DischargeDate time.Time `json:"discharge_date" db:"discharge_date"`
}

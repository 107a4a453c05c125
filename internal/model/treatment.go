package model

import "github.com/google/uuid"

// Treatment records the options a doctor applied to a patient and
// whether they were correct. Writing one also adjusts the doctor's
// incorrect-treatment counter, inside the same transaction.
type Treatment struct {
	Base
	PatientID        uuid.UUID `json:"patient_id" db:"patient_id"`
	DoctorID         uuid.UUID `json:"doctor_id" db:"doctor_id"`
	TreatmentOptions string    `json:"treatment_options" db:"treatment_options"`
	Success          bool      `json:"success" db:"success"`
}

// CreateTreatmentRequest represents treatment creation parameters.
// Success is optional: when omitted the engine derives it from the
// configured validation mode.
type CreateTreatmentRequest struct {
	PatientID        string `json:"patient_id" binding:"required"`
	TreatmentOptions string `json:"treatment_options" binding:"required"`
	Success          *bool  `json:"success"`
}

// UpdateTreatmentRequest represents treatment update parameters
type UpdateTreatmentRequest struct {
	TreatmentOptions *string `json:"treatment_options"`
	Success          *bool   `json:"success"`
}

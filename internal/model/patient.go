package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is admitted under exactly one doctor and carries a set of
// diseases through the patient_diseases join table.
type Patient struct {
	Base
	Name         string     `json:"name" db:"name"`
	DoctorID     uuid.UUID  `json:"doctor_id" db:"doctor_id"`
	TimeAdmitted time.Time  `json:"time_admitted" db:"time_admitted"`
	Active       bool       `json:"is_active" db:"is_active"`
	Diseases     []*Disease `json:"diseases,omitempty" db:"-"`
}

// CreatePatientRequest represents patient admission parameters
type CreatePatientRequest struct {
	Name string `json:"name" binding:"required"`
	// DoctorID names the attending doctor; optional for doctor
	// callers, who default to their own profile.
	DoctorID   string   `json:"doctor_id"`
	DiseaseIDs []string `json:"disease_ids"`
}

// UpdatePatientRequest represents patient update parameters
type UpdatePatientRequest struct {
	Name       *string  `json:"name"`
	DiseaseIDs []string `json:"disease_ids"`
}

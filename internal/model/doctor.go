package model

import "github.com/google/uuid"

// IncorrectTreatmentThreshold is the number of incorrect treatments
// after which a doctor's account is deactivated.
const IncorrectTreatmentThreshold = 3

// Doctor is the clinical profile tied one-to-one to a doctor-role user.
type Doctor struct {
	Base
	UserID              uuid.UUID `json:"user_id" db:"user_id"`
	Name                string    `json:"name" db:"name"`
	IncorrectTreatments int       `json:"incorrect_treatments" db:"incorrect_treatments"`
}

// CreateDoctorRequest represents doctor creation parameters
type CreateDoctorRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// UpdateDoctorRequest represents doctor update parameters
type UpdateDoctorRequest struct {
	Name *string `json:"name"`
}

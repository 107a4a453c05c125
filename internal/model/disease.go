package model

// Disease is a shared catalog entity, never owned or deleted through a
// patient.
type Disease struct {
	Base
	Name       string `json:"name" db:"name"`
	IsTerminal bool   `json:"is_terminal" db:"is_terminal"`
}

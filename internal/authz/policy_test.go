package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	docID := uuid.New()
	otherDoc := uuid.New()

	admin := &Actor{UserID: uuid.New(), Role: "admin", Active: true}
	doctor := &Actor{UserID: uuid.New(), DoctorID: docID, Role: "doctor", Active: true}
	inactiveDoctor := &Actor{UserID: uuid.New(), DoctorID: docID, Role: "doctor", Active: false}
	superuser := &Actor{UserID: uuid.New(), Role: "doctor", Active: true, IsSuperuser: true}

	policy := NewPolicy()

	tests := []struct {
		name     string
		actor    *Actor
		action   Action
		resource Resource
		want     bool
	}{
		{"unauthenticated denied", nil, ActionRead, Shared{KindDisease}, false},
		{"inactive denied", inactiveDoctor, ActionRead, Shared{KindDisease}, false},
		{"admin full on users", admin, ActionDelete, Shared{KindUser}, true},
		{"admin full on discharges", admin, ActionCreate, Shared{KindDischarge}, true},
		{"admin on any patient", admin, ActionUpdate, Owned{KindPatient, otherDoc}, true},
		{"superuser bypasses role", superuser, ActionDelete, Shared{KindUser}, true},
		{"doctor reads diseases", doctor, ActionRead, Shared{KindDisease}, true},
		{"doctor cannot write diseases", doctor, ActionCreate, Shared{KindDisease}, false},
		{"doctor owns patient", doctor, ActionUpdate, Owned{KindPatient, docID}, true},
		{"doctor other patient", doctor, ActionRead, Owned{KindPatient, otherDoc}, false},
		{"doctor owns treatment", doctor, ActionCreate, Owned{KindTreatment, docID}, true},
		{"doctor other treatment", doctor, ActionDelete, Owned{KindTreatment, otherDoc}, false},
		{"doctor creates unowned patient", doctor, ActionCreate, Owned{KindPatient, uuid.Nil}, true},
		{"doctor reads users", doctor, ActionRead, Shared{KindUser}, true},
		{"doctor cannot delete users", doctor, ActionDelete, Shared{KindUser}, false},
		{"doctor cannot manage discharges", doctor, ActionCreate, Shared{KindDischarge}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanAccess(tt.actor, tt.action, tt.resource))
		})
	}
}

package authz

import (
	"github.com/google/uuid"
)

// Action is the kind of operation an actor attempts on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Safe reports whether the action never mutates state.
func (a Action) Safe() bool {
	return a == ActionRead
}

// Actor is the authenticated caller resolved from the bearer token.
type Actor struct {
	UserID      uuid.UUID
	DoctorID    uuid.UUID
	Role        string
	Active      bool
	IsSuperuser bool
}

// Resource is anything access decisions are made about. OwnerDoctorID
// returns uuid.Nil for resources without a doctor owner.
type Resource interface {
	Kind() string
	OwnerDoctorID() uuid.UUID
}

// Resource kinds
const (
	KindUser      = "user"
	KindDoctor    = "doctor"
	KindPatient   = "patient"
	KindDisease   = "disease"
	KindTreatment = "treatment"
	KindDischarge = "discharge"
)

// Owned is a ready-made resource for doctor-owned entities.
type Owned struct {
	ResourceKind string
	DoctorID     uuid.UUID
}

func (o Owned) Kind() string             { return o.ResourceKind }
func (o Owned) OwnerDoctorID() uuid.UUID { return o.DoctorID }

// Shared is a ready-made resource for entities with no doctor owner.
type Shared struct {
	ResourceKind string
}

func (s Shared) Kind() string             { return s.ResourceKind }
func (s Shared) OwnerDoctorID() uuid.UUID { return uuid.Nil }

// Policy decides access per role and ownership. Admins hold full CRUD
// on users, doctors and discharges; doctors operate only on their own
// patients and treatments; reads are open to any authenticated caller
// unless a narrower ownership rule applies.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

// CanAccess reports whether the actor may perform the action on the
// resource. A nil actor models an unauthenticated caller and is always
// denied.
func (p *Policy) CanAccess(actor *Actor, action Action, resource Resource) bool {
	if actor == nil || !actor.Active {
		return false
	}

	if actor.IsSuperuser || actor.Role == "admin" {
		return true
	}

	switch resource.Kind() {
	case KindPatient, KindTreatment:
		if actor.Role != "doctor" {
			return false
		}
		owner := resource.OwnerDoctorID()
		// Listing and creation carry no owner yet.
		if owner == uuid.Nil {
			return true
		}
		return owner == actor.DoctorID
	case KindDisease:
		return action.Safe()
	case KindUser, KindDoctor, KindDischarge:
		return action.Safe()
	default:
		return false
	}
}

package association

import (
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/domain/directory"
)

// Request types. The direction encoded in the type fixes which two roles are
// involved and which party is authorized to respond.
const (
	TypePatientToDoctor    = "PATIENT_TO_DOCTOR"
	TypeDoctorToPatient    = "DOCTOR_TO_PATIENT"
	TypePatientToCaregiver = "PATIENT_TO_CAREGIVER"
	TypeCaregiverToPatient = "CAREGIVER_TO_PATIENT"
)

// Request statuses. PENDENTE is the only non-terminal state.
const (
	StatusPending  = "PENDENTE"
	StatusAccepted = "ACEITA"
	StatusRefused  = "RECUSADA"
)

var validTypes = map[string]bool{
	TypePatientToDoctor: true, TypeDoctorToPatient: true,
	TypePatientToCaregiver: true, TypeCaregiverToPatient: true,
}

func ValidType(t string) bool { return validTypes[t] }

// CounterRole returns the role the relation side of a request must hold.
func CounterRole(requestType string) string {
	switch requestType {
	case TypePatientToDoctor, TypeDoctorToPatient:
		return directory.RoleDoctor
	case TypePatientToCaregiver, TypeCaregiverToPatient:
		return directory.RoleCaregiver
	}
	return ""
}

// AssociationRequest is a consent request linking a patient with a doctor or
// caregiver. It is mutated exactly once, by respond, and is immutable after.
type AssociationRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	RelationID  uuid.UUID  `db:"relation_id" json:"relation_id"`
	Type        string     `db:"request_type" json:"type"`
	Status      string     `db:"status" json:"status"`
	CreatorID   uuid.UUID  `db:"creator_id" json:"creator_id"`
	ResponderID *uuid.UUID `db:"responder_id" json:"responder_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}

// AuthorizedResponderID returns the one user who may respond to this request.
// The non-initiating party consents: for patient-initiated types that is the
// relation, for relation-initiated types the patient.
func (r *AssociationRequest) AuthorizedResponderID() uuid.UUID {
	switch r.Type {
	case TypePatientToDoctor, TypeCaregiverToPatient:
		return r.RelationID
	case TypeDoctorToPatient, TypePatientToCaregiver:
		return r.PatientID
	}
	return uuid.Nil
}

// IsParticipant reports whether the user appears on the request as creator,
// responder, patient or relation.
func (r *AssociationRequest) IsParticipant(userID uuid.UUID) bool {
	if r.CreatorID == userID || r.PatientID == userID || r.RelationID == userID {
		return true
	}
	return r.ResponderID != nil && *r.ResponderID == userID
}

// CareLink is an accepted membership between a patient and a doctor or
// caregiver. It is the single source of truth for both directions of the
// relationship.
type CareLink struct {
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	MemberID   uuid.UUID `db:"member_id" json:"member_id"`
	MemberRole string    `db:"member_role" json:"member_role"`
	LinkedAt   time.Time `db:"linked_at" json:"linked_at"`
}

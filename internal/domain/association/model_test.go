package association

import (
	"testing"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/domain/directory"
)

func TestCounterRole(t *testing.T) {
	tests := []struct {
		requestType string
		want        string
	}{
		{TypePatientToDoctor, directory.RoleDoctor},
		{TypeDoctorToPatient, directory.RoleDoctor},
		{TypePatientToCaregiver, directory.RoleCaregiver},
		{TypeCaregiverToPatient, directory.RoleCaregiver},
		{"BOGUS", ""},
	}
	for _, tt := range tests {
		if got := CounterRole(tt.requestType); got != tt.want {
			t.Errorf("CounterRole(%s) = %q, want %q", tt.requestType, got, tt.want)
		}
	}
}

func TestAuthorizedResponderID(t *testing.T) {
	patient := uuid.New()
	relation := uuid.New()

	tests := []struct {
		requestType string
		want        uuid.UUID
	}{
		{TypePatientToDoctor, relation},
		{TypeCaregiverToPatient, relation},
		{TypeDoctorToPatient, patient},
		{TypePatientToCaregiver, patient},
	}
	for _, tt := range tests {
		r := &AssociationRequest{PatientID: patient, RelationID: relation, Type: tt.requestType}
		if got := r.AuthorizedResponderID(); got != tt.want {
			t.Errorf("AuthorizedResponderID(%s) = %s, want %s", tt.requestType, got, tt.want)
		}
	}
}

func TestIsParticipant(t *testing.T) {
	patient := uuid.New()
	relation := uuid.New()
	responder := relation
	r := &AssociationRequest{
		PatientID:   patient,
		RelationID:  relation,
		CreatorID:   patient,
		ResponderID: &responder,
	}

	for _, id := range []uuid.UUID{patient, relation} {
		if !r.IsParticipant(id) {
			t.Errorf("expected %s to be a participant", id)
		}
	}
	if r.IsParticipant(uuid.New()) {
		t.Error("expected outsider to not be a participant")
	}
}

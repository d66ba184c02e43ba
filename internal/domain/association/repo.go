package association

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AssociationRepository persists consent requests.
type AssociationRepository interface {
	Create(ctx context.Context, r *AssociationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*AssociationRequest, error)
	// UpdateStatusIfPending performs the one-shot transition. It reports
	// false when the request was no longer pending, so a losing concurrent
	// responder can be told apart from a successful one.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string, responderID uuid.UUID, respondedAt time.Time) (bool, error)
	ListVisibleTo(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*AssociationRequest, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AssociationRequest, int, error)
}

// CareLinkRepository maintains accepted patient memberships.
type CareLinkRepository interface {
	// AddMember unions the membership; re-adding an existing member is a
	// no-op.
	AddMember(ctx context.Context, patientID, memberID uuid.UUID, memberRole string) error
	RemoveMember(ctx context.Context, patientID, memberID uuid.UUID) (bool, error)
	ListTeam(ctx context.Context, patientID uuid.UUID) ([]*CareLink, error)
	ListPatients(ctx context.Context, memberID uuid.UUID) ([]*CareLink, error)
	ListCaregiverIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}

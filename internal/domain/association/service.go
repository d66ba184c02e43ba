package association

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/directory"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/telemetry"
)

// identityDirectory is the slice of the user directory this engine reads.
type identityDirectory interface {
	ResolveActive(ctx context.Context, id uuid.UUID) (*directory.User, error)
	ResolveManyActive(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*directory.User, error)
}

// AcceptedNotifier is invoked after a request transitions to ACEITA. The
// notification fan-out implements it; the engine only knows the trigger.
type AcceptedNotifier interface {
	NotifyAssociationAccepted(ctx context.Context, associationID, patientID, relationID, responderID uuid.UUID) error
}

type Service struct {
	requests AssociationRepository
	links    CareLinkRepository
	dir      identityDirectory
	tx       db.Runner
	notifier AcceptedNotifier
	metrics  *telemetry.Metrics
	log      zerolog.Logger
}

func NewService(requests AssociationRepository, links CareLinkRepository, dir identityDirectory, tx db.Runner, log zerolog.Logger) *Service {
	return &Service{requests: requests, links: links, dir: dir, tx: tx, log: log}
}

// SetNotifier wires the post-acceptance fan-out. Set once at startup.
func (s *Service) SetNotifier(n AcceptedNotifier) { s.notifier = n }

// SetMetrics wires the domain counters. Set once at startup.
func (s *Service) SetMetrics(m *telemetry.Metrics) { s.metrics = m }

// Create opens a consent request between a patient and a doctor or caregiver.
// The creator must be one of the two parties.
func (s *Service) Create(ctx context.Context, creatorID, patientID, relationID uuid.UUID, requestType string) (*AssociationRequest, error) {
	if !ValidType(requestType) {
		return nil, apperr.Invalid("invalid request type: %s", requestType)
	}
	if patientID == relationID {
		return nil, apperr.Invalid("patient and relation must be distinct users")
	}

	users, err := s.dir.ResolveManyActive(ctx, []uuid.UUID{creatorID, patientID, relationID})
	if err != nil {
		return nil, err
	}
	patient, relation := users[patientID], users[relationID]

	if patient.Role != directory.RolePatient {
		return nil, apperr.Invalid("user %s is not a patient", patientID)
	}
	if want := CounterRole(requestType); relation.Role != want {
		return nil, apperr.Invalid("user %s must have role %s for type %s", relationID, want, requestType)
	}
	if creatorID != patientID && creatorID != relationID {
		return nil, apperr.Forbidden("creator must be the patient or the relation")
	}

	req := &AssociationRequest{
		PatientID:  patientID,
		RelationID: relationID,
		Type:       requestType,
		Status:     StatusPending,
		CreatorID:  creatorID,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	req.CreatedAt = time.Now()
	if s.metrics != nil {
		s.metrics.AssociationCreated()
	}
	return req, nil
}

// Respond executes the one-shot consent transition. Status update and linkage
// materialization commit in one transaction; the fan-out fires after commit.
func (s *Service) Respond(ctx context.Context, requestID, responderID uuid.UUID, newStatus string) (*AssociationRequest, error) {
	if newStatus != StatusAccepted && newStatus != StatusRefused {
		return nil, apperr.Invalid("status must be %s or %s", StatusAccepted, StatusRefused)
	}

	var req *AssociationRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.requests.GetByID(ctx, requestID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("association request %s not found", requestID)
		}
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return apperr.Conflict("request %s was already responded to", requestID)
		}
		if req.AuthorizedResponderID() != responderID {
			return apperr.Forbidden("user %s is not authorized to respond to this request", responderID)
		}

		now := time.Now()
		updated, err := s.requests.UpdateStatusIfPending(ctx, requestID, newStatus, responderID, now)
		if err != nil {
			return err
		}
		if !updated {
			return apperr.Conflict("request %s was already responded to", requestID)
		}
		req.Status = newStatus
		req.ResponderID = &responderID
		req.RespondedAt = &now

		if newStatus == StatusAccepted {
			return s.links.AddMember(ctx, req.PatientID, req.RelationID, CounterRole(req.Type))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssociationResponded(newStatus)
	}
	if newStatus == StatusAccepted && s.notifier != nil {
		if err := s.notifier.NotifyAssociationAccepted(ctx, req.ID, req.PatientID, req.RelationID, responderID); err != nil {
			s.log.Warn().Err(err).
				Str("association_id", req.ID.String()).
				Msg("acceptance fan-out failed")
		}
	}
	return req, nil
}

// GetForUser loads a request, refusing callers who are not a participant.
func (s *Service) GetForUser(ctx context.Context, id, userID uuid.UUID) (*AssociationRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("association request %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if !req.IsParticipant(userID) {
		return nil, apperr.Forbidden("user %s may not view this request", userID)
	}
	return req, nil
}

func (s *Service) ListVisibleToUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*AssociationRequest, int, error) {
	return s.requests.ListVisibleTo(ctx, userID, limit, offset)
}

// ListCareTeam returns the doctors and caregivers linked to a patient.
func (s *Service) ListCareTeam(ctx context.Context, patientID uuid.UUID) ([]*CareLink, error) {
	if _, err := s.dir.ResolveActive(ctx, patientID); err != nil {
		return nil, err
	}
	return s.links.ListTeam(ctx, patientID)
}

// ListPatients returns the patients a doctor or caregiver is linked to.
func (s *Service) ListPatients(ctx context.Context, memberID uuid.UUID) ([]*CareLink, error) {
	if _, err := s.dir.ResolveActive(ctx, memberID); err != nil {
		return nil, err
	}
	return s.links.ListPatients(ctx, memberID)
}

// Unlink removes an accepted membership. Only the two parties themselves, or
// an admin, may sever the link.
func (s *Service) Unlink(ctx context.Context, callerID uuid.UUID, admin bool, patientID, memberID uuid.UUID) error {
	if !admin && callerID != patientID && callerID != memberID {
		return apperr.Forbidden("user %s may not remove this link", callerID)
	}
	removed, err := s.links.RemoveMember(ctx, patientID, memberID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("no link between patient %s and member %s", patientID, memberID)
	}
	return nil
}

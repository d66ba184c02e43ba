package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/directory"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/telemetry"
)

// identityDirectory is the slice of the user directory the fan-out reads.
type identityDirectory interface {
	ResolveActive(ctx context.Context, id uuid.UUID) (*directory.User, error)
	ResolveManyActive(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*directory.User, error)
}

// CaregiverLister yields the caregivers already linked to a patient, so
// acceptance fan-outs keep the whole care team informed.
type CaregiverLister interface {
	ListCaregiverIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}

type Service struct {
	repo       NotificationRepository
	dir        identityDirectory
	caregivers CaregiverLister
	tx         db.Runner
	metrics    *telemetry.Metrics
	log        zerolog.Logger
}

func NewService(repo NotificationRepository, dir identityDirectory, caregivers CaregiverLister, tx db.Runner, log zerolog.Logger) *Service {
	return &Service{repo: repo, dir: dir, caregivers: caregivers, tx: tx, log: log}
}

// SetMetrics wires the domain counters. Set once at startup.
func (s *Service) SetMetrics(m *telemetry.Metrics) { s.metrics = m }

// CreateAndSend persists one notification plus its recipient links in a
// single transaction. The sender is never its own recipient.
func (s *Service) CreateAndSend(ctx context.Context, senderID uuid.UUID, notificationType, title, message string, recipientIDs []uuid.UUID, examID, associationID *uuid.UUID) (*View, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Invalid("title is required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Invalid("message is required")
	}

	sender, err := s.dir.ResolveActive(ctx, senderID)
	if err != nil {
		return nil, err
	}

	recipients := dedupe(recipientIDs, senderID)
	if len(recipients) == 0 {
		return nil, apperr.Invalid("recipient set is empty after removing the sender")
	}

	resolved, err := s.dir.ResolveManyActive(ctx, recipients)
	if err != nil {
		return nil, err
	}

	n := &Notification{
		SenderID:      senderID,
		Title:         title,
		Message:       message,
		Type:          notificationType,
		ExamID:        examID,
		AssociationID: associationID,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
		return s.repo.AddRecipients(ctx, n.ID, recipients)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.NotificationCreated()
	}

	view := &View{Notification: *n, SenderName: sender.Name, SenderEmail: sender.Email}
	for _, id := range recipients {
		u := resolved[id]
		view.Recipients = append(view.Recipients, RecipientView{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return view, nil
}

// NotifyAssociationAccepted fans out an acceptance to both parties plus the
// patient's caregivers. Keyed by association id so re-processing the same
// acceptance never duplicates the notification.
func (s *Service) NotifyAssociationAccepted(ctx context.Context, associationID, patientID, relationID, responderID uuid.UUID) error {
	already, err := s.repo.ExistsForAssociation(ctx, associationID)
	if err != nil {
		return err
	}
	if already {
		s.log.Debug().Str("association_id", associationID.String()).Msg("acceptance already fanned out")
		return nil
	}

	caregiverIDs, err := s.caregivers.ListCaregiverIDs(ctx, patientID)
	if err != nil {
		return err
	}

	recipients := append([]uuid.UUID{patientID, relationID}, caregiverIDs...)
	responder, err := s.dir.ResolveActive(ctx, responderID)
	if err != nil {
		return err
	}

	_, err = s.CreateAndSend(ctx, responderID, TypeAssociationAccepted,
		"Association accepted",
		fmt.Sprintf("%s accepted a care association request.", responder.Name),
		recipients, nil, &associationID)
	return err
}

// NotifyExamStatusChanged informs the patient, and on completion the whole
// care team of caregivers, that an exam moved to a new status.
func (s *Service) NotifyExamStatusChanged(ctx context.Context, examID, patientID, doctorID uuid.UUID, examName, newStatus string) error {
	recipients := []uuid.UUID{patientID}
	if newStatus == "COMPLETED" {
		caregiverIDs, err := s.caregivers.ListCaregiverIDs(ctx, patientID)
		if err != nil {
			return err
		}
		recipients = append(recipients, caregiverIDs...)
	}

	_, err := s.CreateAndSend(ctx, doctorID, TypeExamStatus,
		fmt.Sprintf("Exam %s", strings.ToLower(newStatus)),
		fmt.Sprintf("Exam %q is now %s.", examName, newStatus),
		recipients, &examID, nil)
	return err
}

// ListByRecipient returns a user's inbox, most recent first.
func (s *Service) ListByRecipient(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*InboxItem, int, error) {
	return s.repo.ListByRecipient(ctx, userID, unreadOnly, limit, offset)
}

// MarkAsRead marks one inbox entry read. A repeat call by the same recipient
// succeeds without touching the stored read timestamp.
func (s *Service) MarkAsRead(ctx context.Context, userID uuid.UUID, notificationID int64) error {
	exists, err := s.repo.IsRecipient(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("user %s is not a recipient of notification %d", userID, notificationID)
	}

	changed, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if changed && s.metrics != nil {
		s.metrics.NotificationRead()
	}
	return nil
}

// dedupe removes duplicate ids and the sender while preserving order.
func dedupe(ids []uuid.UUID, senderID uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if id == senderID || id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

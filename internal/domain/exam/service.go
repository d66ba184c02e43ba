package exam

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/association"
	"github.com/carelink/carelink/internal/domain/directory"
	"github.com/carelink/carelink/internal/platform/apperr"
)

// identityDirectory is the slice of the user directory this service reads.
type identityDirectory interface {
	ResolveActive(ctx context.Context, id uuid.UUID) (*directory.User, error)
}

// careLinks exposes accepted memberships, used both to gate which doctors may
// request exams and to extend read access to a patient's care team.
type careLinks interface {
	ListTeam(ctx context.Context, patientID uuid.UUID) ([]*association.CareLink, error)
}

// StatusNotifier is invoked after a status change persists. The notification
// fan-out implements it.
type StatusNotifier interface {
	NotifyExamStatusChanged(ctx context.Context, examID, patientID, doctorID uuid.UUID, examName, newStatus string) error
}

type Service struct {
	exams    ExamRepository
	links    careLinks
	dir      identityDirectory
	notifier StatusNotifier
	log      zerolog.Logger
}

func NewService(exams ExamRepository, links careLinks, dir identityDirectory, log zerolog.Logger) *Service {
	return &Service{exams: exams, links: links, dir: dir, log: log}
}

// SetNotifier wires the status-change fan-out. Set once at startup.
func (s *Service) SetNotifier(n StatusNotifier) { s.notifier = n }

// Create requests an exam. Only a doctor already linked to the patient may
// request one.
func (s *Service) Create(ctx context.Context, doctorID, patientID uuid.UUID, name string, scheduledFor *time.Time) (*Exam, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Invalid("exam name is required")
	}

	doctor, err := s.dir.ResolveActive(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsDoctor() {
		return nil, apperr.Forbidden("only doctors may request exams")
	}
	patient, err := s.dir.ResolveActive(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !patient.IsPatient() {
		return nil, apperr.Invalid("user %s is not a patient", patientID)
	}
	linked, err := s.isOnTeam(ctx, patientID, doctorID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperr.Forbidden("doctor %s is not linked to patient %s", doctorID, patientID)
	}

	e := &Exam{
		PatientID:    patientID,
		DoctorID:     doctorID,
		Name:         name,
		Status:       StatusRequested,
		ScheduledFor: scheduledFor,
	}
	if err := s.exams.Create(ctx, e); err != nil {
		return nil, err
	}
	e.CreatedAt = time.Now()
	return e, nil
}

// UpdateStatus moves an exam along its lifecycle. The requesting doctor is
// the only caller allowed to transition it.
func (s *Service) UpdateStatus(ctx context.Context, callerID, examID uuid.UUID, newStatus string, resultNote *string, scheduledFor *time.Time) (*Exam, error) {
	e, err := s.get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if e.DoctorID != callerID {
		return nil, apperr.Forbidden("only the requesting doctor may update exam %s", examID)
	}
	if !CanTransition(e.Status, newStatus) {
		return nil, apperr.Invalid("cannot move exam from %s to %s", e.Status, newStatus)
	}
	if newStatus == StatusScheduled && scheduledFor == nil && e.ScheduledFor == nil {
		return nil, apperr.Invalid("scheduling an exam requires a date")
	}

	if err := s.exams.UpdateStatus(ctx, examID, newStatus, resultNote, scheduledFor); err != nil {
		return nil, err
	}
	e.Status = newStatus
	if resultNote != nil {
		e.ResultNote = resultNote
	}
	if scheduledFor != nil {
		e.ScheduledFor = scheduledFor
	}

	if s.notifier != nil && (newStatus == StatusScheduled || newStatus == StatusCompleted) {
		if err := s.notifier.NotifyExamStatusChanged(ctx, e.ID, e.PatientID, e.DoctorID, e.Name, newStatus); err != nil {
			s.log.Warn().Err(err).
				Str("exam_id", e.ID.String()).
				Msg("exam status fan-out failed")
		}
	}
	return e, nil
}

// GetForUser loads an exam for the patient, the requesting doctor, or a
// member of the patient's care team.
func (s *Service) GetForUser(ctx context.Context, examID, userID uuid.UUID) (*Exam, error) {
	e, err := s.get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if e.PatientID == userID || e.DoctorID == userID {
		return e, nil
	}
	onTeam, err := s.isOnTeam(ctx, e.PatientID, userID)
	if err != nil {
		return nil, err
	}
	if !onTeam {
		return nil, apperr.Forbidden("user %s may not view exam %s", userID, examID)
	}
	return e, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	return s.exams.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	return s.exams.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Exam, error) {
	e, err := s.exams.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("exam %s not found", id)
	}
	return e, err
}

func (s *Service) isOnTeam(ctx context.Context, patientID, memberID uuid.UUID) (bool, error) {
	team, err := s.links.ListTeam(ctx, patientID)
	if err != nil {
		return false, err
	}
	for _, l := range team {
		if l.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

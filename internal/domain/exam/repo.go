package exam

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExamRepository persists exams.
type ExamRepository interface {
	Create(ctx context.Context, e *Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*Exam, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, resultNote *string, scheduledFor *time.Time) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Exam, int, error)
}

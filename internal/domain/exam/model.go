package exam

import (
	"time"

	"github.com/google/uuid"
)

// Exam statuses. REQUESTED and SCHEDULED are open; COMPLETED and CANCELED
// are terminal.
const (
	StatusRequested = "REQUESTED"
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCanceled  = "CANCELED"
)

var transitions = map[string][]string{
	StatusRequested: {StatusScheduled, StatusCanceled},
	StatusScheduled: {StatusCompleted, StatusCanceled},
}

// CanTransition reports whether an exam may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Exam is a medical exam a doctor requests for a patient.
type Exam struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Name         string     `db:"name" json:"name"`
	Status       string     `db:"status" json:"status"`
	ScheduledFor *time.Time `db:"scheduled_for" json:"scheduled_for,omitempty"`
	ResultNote   *string    `db:"result_note" json:"result_note,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

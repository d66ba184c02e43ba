package exam

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/association"
	"github.com/carelink/carelink/internal/domain/directory"
	"github.com/carelink/carelink/internal/platform/apperr"
)

// -- mocks --

type mockExamRepo struct {
	exams map[uuid.UUID]*Exam
}

func newMockExamRepo() *mockExamRepo {
	return &mockExamRepo{exams: make(map[uuid.UUID]*Exam)}
}

func (m *mockExamRepo) Create(ctx context.Context, e *Exam) error {
	e.ID = uuid.New()
	cp := *e
	cp.CreatedAt = time.Now()
	m.exams[e.ID] = &cp
	return nil
}

func (m *mockExamRepo) GetByID(ctx context.Context, id uuid.UUID) (*Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (m *mockExamRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resultNote *string, scheduledFor *time.Time) error {
	e := m.exams[id]
	e.Status = status
	if resultNote != nil {
		e.ResultNote = resultNote
	}
	if scheduledFor != nil {
		e.ScheduledFor = scheduledFor
	}
	return nil
}

func (m *mockExamRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	var out []*Exam
	for _, e := range m.exams {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *mockExamRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	var out []*Exam
	for _, e := range m.exams {
		if e.DoctorID == doctorID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

type mockCareLinks struct {
	teams map[uuid.UUID][]*association.CareLink
}

func (m *mockCareLinks) ListTeam(ctx context.Context, patientID uuid.UUID) ([]*association.CareLink, error) {
	return m.teams[patientID], nil
}

func (m *mockCareLinks) link(patientID, memberID uuid.UUID, role string) {
	m.teams[patientID] = append(m.teams[patientID], &association.CareLink{
		PatientID: patientID, MemberID: memberID, MemberRole: role,
	})
}

type mockDirectory struct {
	users map[uuid.UUID]*directory.User
}

func (m *mockDirectory) add(role string) uuid.UUID {
	id := uuid.New()
	m.users[id] = &directory.User{ID: id, Name: "User " + role, Role: role, Active: true}
	return id
}

func (m *mockDirectory) ResolveActive(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	u, ok := m.users[id]
	if !ok || !u.Active {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return u, nil
}

type statusCall struct {
	examID    uuid.UUID
	newStatus string
}

type recordingNotifier struct {
	calls []statusCall
}

func (n *recordingNotifier) NotifyExamStatusChanged(ctx context.Context, examID, patientID, doctorID uuid.UUID, examName, newStatus string) error {
	n.calls = append(n.calls, statusCall{examID: examID, newStatus: newStatus})
	return nil
}

type fixture struct {
	svc      *Service
	repo     *mockExamRepo
	links    *mockCareLinks
	dir      *mockDirectory
	notifier *recordingNotifier
}

func newFixture() *fixture {
	repo := newMockExamRepo()
	links := &mockCareLinks{teams: make(map[uuid.UUID][]*association.CareLink)}
	dir := &mockDirectory{users: make(map[uuid.UUID]*directory.User)}
	svc := NewService(repo, links, dir, zerolog.Nop())
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	return &fixture{svc: svc, repo: repo, links: links, dir: dir, notifier: notifier}
}

func (f *fixture) linkedPair() (doctor, patient uuid.UUID) {
	doctor = f.dir.add(directory.RoleDoctor)
	patient = f.dir.add(directory.RolePatient)
	f.links.link(patient, doctor, directory.RoleDoctor)
	return doctor, patient
}

// -- create --

func TestCreate_Valid(t *testing.T) {
	f := newFixture()
	doctor, patient := f.linkedPair()

	e, err := f.svc.Create(context.Background(), doctor, patient, "Blood panel", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != StatusRequested {
		t.Errorf("expected status %s, got %s", StatusRequested, e.Status)
	}
}

func TestCreate_UnlinkedDoctorForbidden(t *testing.T) {
	f := newFixture()
	doctor := f.dir.add(directory.RoleDoctor)
	patient := f.dir.add(directory.RolePatient)

	_, err := f.svc.Create(context.Background(), doctor, patient, "Blood panel", nil)
	if !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden for unlinked doctor, got %v", err)
	}
}

func TestCreate_NonDoctorForbidden(t *testing.T) {
	f := newFixture()
	caregiver := f.dir.add(directory.RoleCaregiver)
	patient := f.dir.add(directory.RolePatient)

	_, err := f.svc.Create(context.Background(), caregiver, patient, "Blood panel", nil)
	if !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden for non-doctor, got %v", err)
	}
}

// -- status transitions --

func TestUpdateStatus_LifecycleAndNotifications(t *testing.T) {
	f := newFixture()
	doctor, patient := f.linkedPair()
	e, _ := f.svc.Create(context.Background(), doctor, patient, "MRI", nil)

	when := time.Now().Add(48 * time.Hour)
	if _, err := f.svc.UpdateStatus(context.Background(), doctor, e.ID, StatusScheduled, nil, &when); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	note := "all clear"
	got, err := f.svc.UpdateStatus(context.Background(), doctor, e.ID, StatusCompleted, &note, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != StatusCompleted || got.ResultNote == nil || *got.ResultNote != note {
		t.Errorf("unexpected final exam state: %+v", got)
	}

	if len(f.notifier.calls) != 2 {
		t.Fatalf("expected 2 fan-out calls, got %d", len(f.notifier.calls))
	}
	if f.notifier.calls[0].newStatus != StatusScheduled || f.notifier.calls[1].newStatus != StatusCompleted {
		t.Errorf("unexpected fan-out sequence: %v", f.notifier.calls)
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	f := newFixture()
	doctor, patient := f.linkedPair()
	e, _ := f.svc.Create(context.Background(), doctor, patient, "MRI", nil)

	_, err := f.svc.UpdateStatus(context.Background(), doctor, e.ID, StatusCompleted, nil, nil)
	if !apperr.IsInvalid(err) {
		t.Errorf("expected invalid for REQUESTED to COMPLETED, got %v", err)
	}
}

func TestUpdateStatus_ScheduleRequiresDate(t *testing.T) {
	f := newFixture()
	doctor, patient := f.linkedPair()
	e, _ := f.svc.Create(context.Background(), doctor, patient, "MRI", nil)

	_, err := f.svc.UpdateStatus(context.Background(), doctor, e.ID, StatusScheduled, nil, nil)
	if !apperr.IsInvalid(err) {
		t.Errorf("expected invalid without a date, got %v", err)
	}
}

func TestUpdateStatus_OnlyRequestingDoctor(t *testing.T) {
	f := newFixture()
	doctor, patient := f.linkedPair()
	other := f.dir.add(directory.RoleDoctor)
	e, _ := f.svc.Create(context.Background(), doctor, patient, "MRI", nil)

	_, err := f.svc.UpdateStatus(context.Background(), other, e.ID, StatusCanceled, nil, nil)
	if !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden for other doctor, got %v", err)
	}
}

func TestUpdateStatus_CancelDoesNotNotify(t *testing.T) {
	f := newFixture()
	doctor, patient := f.linkedPair()
	e, _ := f.svc.Create(context.Background(), doctor, patient, "MRI", nil)

	if _, err := f.svc.UpdateStatus(context.Background(), doctor, e.ID, StatusCanceled, nil, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(f.notifier.calls) != 0 {
		t.Errorf("expected no fan-out on cancel, got %v", f.notifier.calls)
	}
}

// -- visibility --

func TestGetForUser_CareTeamCanRead(t *testing.T) {
	f := newFixture()
	doctor, patient := f.linkedPair()
	caregiver := f.dir.add(directory.RoleCaregiver)
	f.links.link(patient, caregiver, directory.RoleCaregiver)
	outsider := f.dir.add(directory.RolePatient)

	e, _ := f.svc.Create(context.Background(), doctor, patient, "MRI", nil)

	for _, id := range []uuid.UUID{patient, doctor, caregiver} {
		if _, err := f.svc.GetForUser(context.Background(), e.ID, id); err != nil {
			t.Errorf("expected %s to read the exam: %v", id, err)
		}
	}
	_, err := f.svc.GetForUser(context.Background(), e.ID, outsider)
	if !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden for outsider, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusRequested, StatusScheduled, true},
		{StatusRequested, StatusCanceled, true},
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusCanceled, true},
		{StatusRequested, StatusCompleted, false},
		{StatusCompleted, StatusCanceled, false},
		{StatusCanceled, StatusScheduled, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

package exam

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type examRepoPG struct{ pool *pgxpool.Pool }

func NewExamRepoPG(pool *pgxpool.Pool) ExamRepository {
	return &examRepoPG{pool: pool}
}

func (r *examRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const examCols = `id, patient_id, doctor_id, name, status, scheduled_for, result_note,
	created_at, updated_at`

func (r *examRepoPG) scanExam(row pgx.Row) (*Exam, error) {
	var e Exam
	err := row.Scan(&e.ID, &e.PatientID, &e.DoctorID, &e.Name, &e.Status,
		&e.ScheduledFor, &e.ResultNote, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *examRepoPG) Create(ctx context.Context, e *Exam) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO exam (id, patient_id, doctor_id, name, status, scheduled_for)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.PatientID, e.DoctorID, e.Name, e.Status, e.ScheduledFor)
	return err
}

func (r *examRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Exam, error) {
	return r.scanExam(r.conn(ctx).QueryRow(ctx, `SELECT `+examCols+` FROM exam WHERE id = $1`, id))
}

func (r *examRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resultNote *string, scheduledFor *time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE exam SET status=$2,
			result_note=COALESCE($3, result_note),
			scheduled_for=COALESCE($4, scheduled_for),
			updated_at=NOW()
		WHERE id = $1`,
		id, status, resultNote, scheduledFor)
	return err
}

func (r *examRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	return r.listBy(ctx, `patient_id`, patientID, limit, offset)
}

func (r *examRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	return r.listBy(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *examRepoPG) listBy(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM exam WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+examCols+` FROM exam WHERE `+col+` = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Exam
	for rows.Next() {
		e, err := r.scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

package association

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

// =========== Association Request Repository ===========

type associationRepoPG struct{ pool *pgxpool.Pool }

func NewAssociationRepoPG(pool *pgxpool.Pool) AssociationRepository {
	return &associationRepoPG{pool: pool}
}

func (r *associationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const assocCols = `id, patient_id, relation_id, request_type, status, creator_id,
	responder_id, created_at, responded_at`

func (r *associationRepoPG) scanRequest(row pgx.Row) (*AssociationRequest, error) {
	var a AssociationRequest
	err := row.Scan(&a.ID, &a.PatientID, &a.RelationID, &a.Type, &a.Status, &a.CreatorID,
		&a.ResponderID, &a.CreatedAt, &a.RespondedAt)
	return &a, err
}

func (r *associationRepoPG) Create(ctx context.Context, a *AssociationRequest) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO association_request (id, patient_id, relation_id, request_type, status, creator_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.PatientID, a.RelationID, a.Type, a.Status, a.CreatorID)
	return err
}

func (r *associationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*AssociationRequest, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx, `SELECT `+assocCols+` FROM association_request WHERE id = $1`, id))
}

func (r *associationRepoPG) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string, responderID uuid.UUID, respondedAt time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE association_request SET status=$2, responder_id=$3, responded_at=$4
		WHERE id = $1 AND status = 'PENDENTE'`,
		id, status, responderID, respondedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *associationRepoPG) ListVisibleTo(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*AssociationRequest, int, error) {
	const visible = `patient_id = $1 OR relation_id = $1 OR creator_id = $1 OR responder_id = $1`
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM association_request WHERE `+visible, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+assocCols+` FROM association_request WHERE `+visible+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AssociationRequest
	for rows.Next() {
		a, err := r.scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *associationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AssociationRequest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM association_request WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+assocCols+` FROM association_request WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AssociationRequest
	for rows.Next() {
		a, err := r.scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// =========== Care Link Repository ===========

type careLinkRepoPG struct{ pool *pgxpool.Pool }

func NewCareLinkRepoPG(pool *pgxpool.Pool) CareLinkRepository {
	return &careLinkRepoPG{pool: pool}
}

func (r *careLinkRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *careLinkRepoPG) AddMember(ctx context.Context, patientID, memberID uuid.UUID, memberRole string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO care_link (patient_id, member_id, member_role)
		VALUES ($1,$2,$3)
		ON CONFLICT (patient_id, member_id) DO NOTHING`,
		patientID, memberID, memberRole)
	return err
}

func (r *careLinkRepoPG) RemoveMember(ctx context.Context, patientID, memberID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM care_link WHERE patient_id = $1 AND member_id = $2`, patientID, memberID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *careLinkRepoPG) ListTeam(ctx context.Context, patientID uuid.UUID) ([]*CareLink, error) {
	return r.list(ctx, `SELECT patient_id, member_id, member_role, linked_at FROM care_link WHERE patient_id = $1 ORDER BY linked_at`, patientID)
}

func (r *careLinkRepoPG) ListPatients(ctx context.Context, memberID uuid.UUID) ([]*CareLink, error) {
	return r.list(ctx, `SELECT patient_id, member_id, member_role, linked_at FROM care_link WHERE member_id = $1 ORDER BY linked_at`, memberID)
}

func (r *careLinkRepoPG) list(ctx context.Context, query string, arg interface{}) ([]*CareLink, error) {
	rows, err := r.conn(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CareLink
	for rows.Next() {
		var l CareLink
		if err := rows.Scan(&l.PatientID, &l.MemberID, &l.MemberRole, &l.LinkedAt); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}

func (r *careLinkRepoPG) ListCaregiverIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT member_id FROM care_link WHERE patient_id = $1 AND member_role = 'CAREGIVER'`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/platform/apperr"
)

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) Register(ctx context.Context, u *User) error {
	if strings.TrimSpace(u.Name) == "" {
		return apperr.Invalid("name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return apperr.Invalid("email is required")
	}
	if !ValidRole(u.Role) {
		return apperr.Invalid("invalid role: %s", u.Role)
	}
	if u.Role == RoleDoctor && (u.CRM == nil || *u.CRM == "") {
		return apperr.Invalid("crm is required for doctors")
	}
	if existing, err := s.users.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return apperr.Conflict("email %s is already registered", u.Email)
	}
	u.Active = true
	return s.users.Create(ctx, u)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return u, err
}

// GetByEmail looks a user up by business identifier instead of primary key.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperr.Invalid("email is required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && u == nil) {
		return nil, apperr.NotFound("user %s not found", email)
	}
	return u, err
}

func (s *Service) Update(ctx context.Context, u *User) error {
	existing, err := s.Get(ctx, u.ID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(u.Name) == "" {
		return apperr.Invalid("name is required")
	}
	u.Role = existing.Role
	return s.users.Update(ctx, u)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.users.SetActive(ctx, id, false)
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	if role != "" && !ValidRole(role) {
		return nil, 0, apperr.Invalid("invalid role: %s", role)
	}
	return s.users.List(ctx, role, limit, offset)
}

// ResolveActive loads a user and rejects ids that do not map to an active
// account.
func (s *Service) ResolveActive(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return u, nil
}

// ResolveManyActive loads a batch of users in one round trip. Missing or
// inactive ids are reported by id so callers can surface them precisely.
func (s *Service) ResolveManyActive(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*User{}, nil
	}
	found, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*User, len(found))
	for _, u := range found {
		if u.Active {
			byID[u.ID] = u
		}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, apperr.NotFound("users not found: %s", strings.Join(missing, ", "))
	}
	return byID, nil
}

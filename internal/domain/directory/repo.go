package directory

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists registered users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*User, error)
	Update(ctx context.Context, u *User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
}

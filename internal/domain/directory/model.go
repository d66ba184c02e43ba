package directory

import (
	"time"

	"github.com/google/uuid"
)

// Roles a registered user can hold. A user has exactly one role.
const (
	RoleAdmin     = "ADMIN"
	RoleDoctor    = "DOCTOR"
	RoleCaregiver = "CAREGIVER"
	RolePatient   = "PATIENT"
)

var validRoles = map[string]bool{
	RoleAdmin: true, RoleDoctor: true, RoleCaregiver: true, RolePatient: true,
}

func ValidRole(role string) bool { return validRoles[role] }

// User is a registered person in the care network.
type User struct {
	ID     uuid.UUID `db:"id" json:"id"`
	Name   string    `db:"name" json:"name"`
	Email  string    `db:"email" json:"email"`
	Role   string    `db:"role" json:"role"`
	Active bool      `db:"active" json:"active"`

	// Doctor profile
	CRM        *string `db:"crm" json:"crm,omitempty"`
	Speciality *string `db:"speciality" json:"speciality,omitempty"`

	// Patient and caregiver profile
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsDoctor() bool    { return u.Role == RoleDoctor }
func (u *User) IsCaregiver() bool { return u.Role == RoleCaregiver }
func (u *User) IsPatient() bool   { return u.Role == RolePatient }

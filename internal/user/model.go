package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Phone         string     `json:"phone" db:"phone"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	Gender        string     `json:"gender" db:"gender"`
	TermsAccepted bool       `json:"terms_accepted" db:"terms_accepted"`
	BirthDate     *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Role          Role       `json:"role" db:"role"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package staff

import (
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleServer  Role = "server"
	RoleManager Role = "manager"
)

// Staff is the authenticated identity behind every order-creating action.
type Staff struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

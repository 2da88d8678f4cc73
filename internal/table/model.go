package table

import (
	"time"

	"github.com/gofrs/uuid"
)

// Table is a physical seating unit. It owns at most one active order at a
// time; availability is derived from the order lifecycle, not stored here.
type Table struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`

	// ActiveOrderCount is filled by list queries only.
	ActiveOrderCount int `json:"active_order_count"`
}

package clinic

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is a care delivery site. Patients optionally belong to one clinic.
type Clinic struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Address    string    `db:"address" json:"address,omitempty"`
	City       string    `db:"city" json:"city,omitempty"`
	State      string    `db:"state" json:"state,omitempty"`
	PostalCode string    `db:"postal_code" json:"postal_code,omitempty"`
	Phone      string    `db:"phone" json:"phone,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

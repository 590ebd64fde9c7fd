package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a demographic record for a person receiving care. Clinical
// content lives elsewhere; this package only carries the fields the
// administrative surface needs.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	MRN       string     `db:"mrn" json:"mrn"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    string     `db:"gender" json:"gender,omitempty"`
	Phone     string     `db:"phone" json:"phone,omitempty"`
	Email     string     `db:"email" json:"email,omitempty"`
	ClinicID  *uuid.UUID `db:"clinic_id" json:"clinic_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName renders the display form used in audit views.
func (p *Patient) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

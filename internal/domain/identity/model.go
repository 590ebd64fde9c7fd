package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the system_user table. Credentials and sessions are issued by
// the external identity provider; this table only holds the profile the rest
// of the system joins against.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Email       string    `db:"email" json:"email"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserWithRoles is a User joined with the names of the roles they hold.
type UserWithRoles struct {
	User
	Roles []string `json:"roles"`
}

package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the trail. Custom verbs are allowed; these cover the
// common operations.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionView   = "view"
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// UnknownOrigin is recorded when the request transport metadata is
// unavailable, e.g. for background jobs.
const UnknownOrigin = "unknown"

// Event maps to the audit_event table. Rows are write-once: the package
// exposes no update or delete path, and the table carries no such statements.
type Event struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	UserID       *uuid.UUID     `db:"user_id" json:"user_id,omitempty"`
	Action       string         `db:"action" json:"action"`
	ResourceType string         `db:"resource_type" json:"resource_type"`
	ResourceID   *uuid.UUID     `db:"resource_id" json:"resource_id,omitempty"`
	Detail       map[string]any `db:"detail" json:"detail,omitempty"`
	IPAddress    string         `db:"ip_address" json:"ip_address"`
	UserAgent    string         `db:"user_agent" json:"user_agent"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// EnrichedEvent is an Event joined with the acting user's display identity.
// Events whose actor has no profile carry an empty ActorName.
type EnrichedEvent struct {
	Event
	ActorName  string `json:"actor_name"`
	ActorEmail string `json:"actor_email,omitempty"`
}

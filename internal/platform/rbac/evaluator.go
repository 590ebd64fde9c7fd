package rbac

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Evaluator decides whether a user may perform an action on a resource.
//
// The contract is a strict boolean: there is no error return, and any store
// fault resolves to deny. Absence of a definitive allow is always treated as
// deny, so a degraded database can never grant access.
type Evaluator struct {
	store  Store
	logger zerolog.Logger
}

func NewEvaluator(store Store, logger zerolog.Logger) *Evaluator {
	return &Evaluator{store: store, logger: logger}
}

// HasPermission reports whether the user holds any role granting
// (resource, action). A user with no role assignments is always denied.
func (e *Evaluator) HasPermission(ctx context.Context, userID uuid.UUID, resource, action string) bool {
	roleIDs, err := e.store.RolesForUser(ctx, userID)
	if err != nil {
		e.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("resource", resource).
			Str("action", action).
			Msg("rbac_store_fault")
		return false
	}
	if len(roleIDs) == 0 {
		return false
	}

	ok, err := e.store.HasAnyPermission(ctx, roleIDs, resource, action)
	if err != nil {
		e.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("resource", resource).
			Str("action", action).
			Msg("rbac_store_fault")
		return false
	}
	return ok
}

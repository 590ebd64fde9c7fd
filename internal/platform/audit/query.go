package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Profile is the denormalized actor identity attached to query results.
type Profile struct {
	Name  string
	Email string
}

// ProfileLookup resolves actor ids to display profiles. It lives in a
// separate logical table, so the join happens here rather than in the event
// query. Implementations must tolerate unknown ids by omitting them from the
// result map.
type ProfileLookup interface {
	ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error)
}

// Page is a page of enriched audit events plus the total count of the
// filtered set before pagination.
type Page struct {
	Events []*EnrichedEvent `json:"events"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// QueryService serves the audit trail back to authorized viewers.
type QueryService struct {
	repo     Repository
	profiles ProfileLookup
	logger   zerolog.Logger
}

func NewQueryService(repo Repository, profiles ProfileLookup, logger zerolog.Logger) *QueryService {
	return &QueryService{repo: repo, profiles: profiles, logger: logger}
}

// Query returns audit events matching the filter, newest-first, enriched with
// actor display identities. An actor without a profile yields an empty
// profile; the event itself is always returned. Enrichment faults degrade to
// unenriched events rather than failing the query.
func (s *QueryService) Query(ctx context.Context, f Filter, limit, offset int) (*Page, error) {
	events, total, err := s.repo.Search(ctx, f, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit: query events: %w", err)
	}

	page := &Page{
		Events: make([]*EnrichedEvent, 0, len(events)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	profiles := s.lookupProfiles(ctx, events)
	for _, e := range events {
		enriched := &EnrichedEvent{Event: *e}
		if e.UserID != nil {
			p := profiles[*e.UserID]
			enriched.ActorName = p.Name
			enriched.ActorEmail = p.Email
		}
		page.Events = append(page.Events, enriched)
	}
	return page, nil
}

// Get returns a single enriched event by id.
func (s *QueryService) Get(ctx context.Context, id uuid.UUID) (*EnrichedEvent, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("audit: get event: %w", err)
	}
	enriched := &EnrichedEvent{Event: *e}
	if e.UserID != nil {
		profiles := s.lookupProfiles(ctx, []*Event{e})
		p := profiles[*e.UserID]
		enriched.ActorName = p.Name
		enriched.ActorEmail = p.Email
	}
	return enriched, nil
}

func (s *QueryService) lookupProfiles(ctx context.Context, events []*Event) map[uuid.UUID]Profile {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, e := range events {
		if e.UserID == nil {
			continue
		}
		if _, ok := seen[*e.UserID]; ok {
			continue
		}
		seen[*e.UserID] = struct{}{}
		ids = append(ids, *e.UserID)
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := s.profiles.ProfilesByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Msg("audit actor enrichment failed")
		return nil
	}
	return profiles
}

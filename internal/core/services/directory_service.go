package services

import (
	"context"
	"time"

	"lendsqr-admin/internal/adapters/persistence/repositories"
	"lendsqr-admin/internal/core/domain"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "users"

// DirectoryService answers list and detail queries from the local mirror,
// refreshing it from the remote feed when the mirror is empty or this
// process has not refreshed yet.
//
// Filtering, sorting and paging run in memory over the whole mirror. That is
// fine for a few thousand records; larger feeds need server-side querying.
type DirectoryService struct {
	source UserSource
	store  repositories.UserStore
	state  *CacheState
	group  singleflight.Group
	now    func() time.Time
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(source UserSource, store repositories.UserStore, state *CacheState) *DirectoryService {
	return &DirectoryService{
		source: source,
		store:  store,
		state:  state,
		now:    time.Now,
	}
}

// GetUsers returns one page of the filtered, sorted directory and the total
// number of matches
func (s *DirectoryService) GetUsers(ctx context.Context, params domain.ListParams) (*domain.UserPage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	matches, err := s.scan(ctx, params.Filter)
	if err != nil {
		return nil, err
	}

	// (page-1)*limit can overflow for absurd pages; those are past the end anyway
	offset := len(matches)
	if params.Page-1 <= len(matches)/params.Limit {
		offset = params.Offset()
	}

	window := repositories.SortedSlice(matches, params.Sort, offset, params.Limit)

	return &domain.UserPage{
		Data:  summaries(window),
		Total: int64(len(matches)),
	}, nil
}

// ListAll returns every match in order, without paging
func (s *DirectoryService) ListAll(ctx context.Context, filter domain.Filter, sort domain.SortKey) ([]domain.UserSummary, error) {
	if err := (domain.ListParams{Page: 1, Limit: 1, Filter: filter, Sort: sort}).Validate(); err != nil {
		return nil, err
	}

	matches, err := s.scan(ctx, filter)
	if err != nil {
		return nil, err
	}

	return summaries(repositories.SortedSlice(matches, sort, 0, len(matches))), nil
}

// GetUserByID looks the id up in the mirror only. Unknown ids return nil, nil.
func (s *DirectoryService) GetUserByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	if id == "" {
		return nil, nil
	}
	return s.store.GetByID(ctx, id)
}

// Stats returns total and per-status counts
func (s *DirectoryService) Stats(ctx context.Context) (*domain.DirectoryStats, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &domain.DirectoryStats{Total: total, ByStatus: byStatus}, nil
}

// Refresh refetches the feed and replaces the mirror even if it is fresh
func (s *DirectoryService) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do(refreshKey, func() (any, error) {
		return nil, s.fetchAndReplace(context.WithoutCancel(ctx))
	})
	return err
}

// RefreshedAt reports when the mirror was last refreshed by this process
func (s *DirectoryService) RefreshedAt() time.Time {
	return s.state.RefreshedAt()
}

func (s *DirectoryService) scan(ctx context.Context, filter domain.Filter) ([]domain.UserRecord, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}
	return s.store.Scan(ctx, filter)
}

// ensureFresh refreshes when the mirror is empty or the flag is unset.
// Concurrent callers share one refresh.
func (s *DirectoryService) ensureFresh(ctx context.Context) error {
	current, err := s.isCurrent(ctx)
	if err != nil || current {
		return err
	}

	_, err, _ = s.group.Do(refreshKey, func() (any, error) {
		// a caller that lost the race may arrive after the refresh finished
		current, err := s.isCurrent(ctx)
		if err != nil || current {
			return nil, err
		}
		return nil, s.fetchAndReplace(context.WithoutCancel(ctx))
	})
	return err
}

func (s *DirectoryService) isCurrent(ctx context.Context) (bool, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0 && s.state.IsFresh(), nil
}

// fetchAndReplace sets the flag only after the mirror has been replaced
func (s *DirectoryService) fetchAndReplace(ctx context.Context) error {
	users, err := s.source.FetchAll(ctx)
	if err != nil {
		return domain.FetchFailed(err)
	}

	if err := s.store.BulkReplace(ctx, users); err != nil {
		return err
	}

	s.state.MarkFresh(s.now())
	return nil
}

func summaries(records []domain.UserRecord) []domain.UserSummary {
	out := make([]domain.UserSummary, len(records))
	for i := range records {
		out[i] = records[i].Summary()
	}
	return out
}

package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lendsqr-admin/internal/adapters/persistence/models"
	"lendsqr-admin/internal/adapters/persistence/repositories"
	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSource serves a fixed dataset and counts calls
type fakeSource struct {
	mu    sync.Mutex
	users []domain.UserRecord
	err   error
	calls atomic.Int32
	gate  chan struct{} // when non-nil, FetchAll blocks until it is closed
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]domain.UserRecord, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.UserRecord(nil), f.users...), nil
}

func (f *fakeSource) set(users []domain.UserRecord, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = users
	f.err = err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.ConnectDatabase(&config.Config{
		AppMode: "prod",
		Store:   config.StoreConfig{Driver: "sqlite", Path: ":memory:"},
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = config.CloseDatabase(db) })
	return db
}

func makeUser(id int) domain.UserRecord {
	statuses := domain.Statuses
	orgs := []string{"Lendsqr", "Irorun", "Lendstar"}
	return domain.UserRecord{
		ID:           strconv.Itoa(id),
		Organization: orgs[id%len(orgs)],
		Status:       statuses[id%len(statuses)],
		DateJoined:   time.Date(2020, 1, id, 9, 30, 0, 0, time.UTC).Format("2006-01-02T15:04:05.000Z"),
		Profile: domain.Profile{
			Username:    fmt.Sprintf("user_%d", id),
			Email:       fmt.Sprintf("user%d@test.com", id),
			PhoneNumber: fmt.Sprintf("070%d", id),
		},
		Guarantors: domain.Guarantors{{FullName: "John Guarantor", Relationship: "Brother"}},
	}
}

func makeUsers(n int) []domain.UserRecord {
	users := make([]domain.UserRecord, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, makeUser(i))
	}
	return users
}

func newDirectory(t *testing.T, users []domain.UserRecord) (*DirectoryService, *fakeSource, repositories.UserStore, *CacheState) {
	t.Helper()
	src := &fakeSource{users: users}
	store := repositories.NewUserStore(newTestDB(t))
	state := NewCacheState()
	return NewDirectoryService(src, store, state), src, store, state
}

func ids(page *domain.UserPage) []string {
	out := make([]string, len(page.Data))
	for i, u := range page.Data {
		out[i] = u.ID
	}
	return out
}

func TestGetUsers_NumericIDOrdering(t *testing.T) {
	svc, _, _, _ := newDirectory(t, makeUsers(15))

	page, err := svc.GetUsers(context.Background(), domain.ListParams{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"6", "7", "8", "9", "10"}, ids(page))
	assert.Equal(t, int64(15), page.Total)
}

func TestGetUsers_PaginationCoversFilteredSet(t *testing.T) {
	svc, _, _, _ := newDirectory(t, makeUsers(23))
	ctx := context.Background()

	for _, limit := range []int{1, 4, 5, 10, 23, 50} {
		var seen []string
		pages := (23 + limit - 1) / limit
		for p := 1; p <= pages; p++ {
			page, err := svc.GetUsers(ctx, domain.ListParams{Page: p, Limit: limit})
			require.NoError(t, err)

			want := min(limit, max(0, 23-(p-1)*limit))
			assert.Len(t, page.Data, want, "limit=%d page=%d", limit, p)
			assert.Equal(t, int64(23), page.Total)
			seen = append(seen, ids(page)...)
		}

		expected := make([]string, 23)
		for i := range expected {
			expected[i] = strconv.Itoa(i + 1)
		}
		assert.Equal(t, expected, seen, "limit=%d", limit)

		beyond, err := svc.GetUsers(ctx, domain.ListParams{Page: pages + 1, Limit: limit})
		require.NoError(t, err)
		assert.Empty(t, beyond.Data)
		assert.Equal(t, int64(23), beyond.Total)
	}
}

func TestGetUsers_TotalIgnoresPaging(t *testing.T) {
	svc, _, _, _ := newDirectory(t, makeUsers(40))
	ctx := context.Background()
	filter := domain.Filter{Status: domain.StatusActive}

	var totals []int64
	for _, p := range []domain.ListParams{
		{Page: 1, Limit: 1, Filter: filter},
		{Page: 3, Limit: 2, Filter: filter},
		{Page: 1, Limit: 100, Filter: filter},
		{Page: 99, Limit: 7, Filter: filter},
	} {
		page, err := svc.GetUsers(ctx, p)
		require.NoError(t, err)
		totals = append(totals, page.Total)
	}
	// ids 4, 8, ... 40 are Active
	assert.Equal(t, []int64{10, 10, 10, 10}, totals)
}

func TestGetUsers_Filters(t *testing.T) {
	users := makeUsers(12)
	users[0].Profile.Username = "grace_1"
	svc, _, _, _ := newDirectory(t, users)
	ctx := context.Background()

	active, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 50, Filter: domain.Filter{Status: domain.StatusActive}})
	require.NoError(t, err)
	require.NotEmpty(t, active.Data)
	for _, u := range active.Data {
		assert.Equal(t, domain.StatusActive, u.Status)
	}

	grace, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10, Filter: domain.Filter{Username: "GRACE"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(grace))
	assert.Equal(t, int64(1), grace.Total)

	byOrg, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 50, Filter: domain.Filter{Organization: "Irorun"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4", "7", "10"}, ids(byOrg))

	byDate, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 50, Filter: domain.Filter{Date: "2020-01-05"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(byDate))

	combined, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 50, Filter: domain.Filter{
		Organization: "Irorun",
		Email:        "USER1",
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "10"}, ids(combined))
}

func TestGetUsers_SortByDateJoined(t *testing.T) {
	users := []domain.UserRecord{makeUser(1), makeUser(2), makeUser(3)}
	users[0].DateJoined = "2022-01-01T00:00:00.000Z"
	users[1].DateJoined = "2019-06-01T00:00:00.000Z"
	users[2].DateJoined = "2021-03-01T00:00:00.000Z"
	svc, _, _, _ := newDirectory(t, users)

	page, err := svc.GetUsers(context.Background(), domain.ListParams{Page: 1, Limit: 10, Sort: domain.SortByDateJoined})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1"}, ids(page))
}

func TestGetUsers_DoesNotRefetchWhenFresh(t *testing.T) {
	svc, src, _, state := newDirectory(t, makeUsers(1))
	ctx := context.Background()

	_, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.True(t, state.IsFresh())

	_, err = svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestGetUsers_RefetchesWhenFlagUnset(t *testing.T) {
	svc, src, store, _ := newDirectory(t, makeUsers(3))
	ctx := context.Background()

	// mirror persisted by an earlier process
	require.NoError(t, store.BulkReplace(ctx, makeUsers(2)))

	page, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, int64(3), page.Total)
}

func TestGetUsers_RefetchesWhenStoreEmptied(t *testing.T) {
	svc, src, store, _ := newDirectory(t, makeUsers(3))
	ctx := context.Background()

	_, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)

	require.NoError(t, store.BulkReplace(ctx, nil))

	page, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, int64(3), page.Total)
}

func TestGetUsers_FetchFailureLeavesStateUntouched(t *testing.T) {
	svc, src, store, state := newDirectory(t, nil)
	ctx := context.Background()

	src.set(nil, &domain.HTTPError{StatusCode: 500, Message: "Internal Server Error"})

	_, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorIs(t, err, domain.ErrHTTP)
	assert.False(t, state.IsFresh())

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	src.set(makeUsers(4), nil)

	page, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, int64(4), page.Total)
	assert.True(t, state.IsFresh())
}

func TestGetUsers_FetchFailureKeepsPersistedMirror(t *testing.T) {
	svc, src, store, _ := newDirectory(t, nil)
	ctx := context.Background()
	require.NoError(t, store.BulkReplace(ctx, makeUsers(5)))

	src.set(nil, fmt.Errorf("%w: connection refused", domain.ErrNetwork))

	_, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorIs(t, err, domain.ErrNetwork)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestGetUsers_StorageFailureDoesNotSetFlag(t *testing.T) {
	dup := makeUsers(3)
	dup[2].ID = dup[0].ID
	svc, src, store, state := newDirectory(t, dup)
	ctx := context.Background()

	_, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, domain.ErrFetchFailed)
	assert.False(t, state.IsFresh())

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	src.set(makeUsers(3), nil)
	page, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestGetUsers_InvalidParameters(t *testing.T) {
	svc, src, _, _ := newDirectory(t, makeUsers(3))
	ctx := context.Background()

	for _, p := range []domain.ListParams{
		{Page: 0, Limit: 10},
		{Page: -1, Limit: 10},
		{Page: 1, Limit: 0},
		{Page: 1, Limit: -1},
		{Page: 1, Limit: 10, Filter: domain.Filter{Status: "Suspended"}},
	} {
		_, err := svc.GetUsers(ctx, p)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter, "%+v", p)
	}
	assert.Zero(t, src.calls.Load())
}

func TestGetUsers_HugePageIsEmpty(t *testing.T) {
	svc, _, _, _ := newDirectory(t, makeUsers(3))

	page, err := svc.GetUsers(context.Background(), domain.ListParams{Page: int(^uint(0) >> 1), Limit: 1000})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(3), page.Total)
}

func TestGetUsers_ConcurrentCallersShareOneRefresh(t *testing.T) {
	svc, src, _, _ := newDirectory(t, makeUsers(10))
	src.gate = make(chan struct{})
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 5})
			if err == nil && page.Total != 10 {
				err = fmt.Errorf("unexpected total %d", page.Total)
			}
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestGetUserByID(t *testing.T) {
	svc, src, _, _ := newDirectory(t, makeUsers(5))
	ctx := context.Background()

	missing, err := svc.GetUserByID(ctx, "3")
	require.NoError(t, err)
	assert.Nil(t, missing, "lookup must not trigger a refresh")
	assert.Zero(t, src.calls.Load())

	_, err = svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 1})
	require.NoError(t, err)

	user, err := svc.GetUserByID(ctx, "3")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user_3", user.Profile.Username)
	require.Len(t, user.Guarantors, 1)

	unknown, err := svc.GetUserByID(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, unknown)

	empty, err := svc.GetUserByID(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestRefresh_AlwaysRefetches(t *testing.T) {
	svc, src, _, state := newDirectory(t, makeUsers(2))
	ctx := context.Background()

	_, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	first := state.RefreshedAt()

	src.set(makeUsers(6), nil)
	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, int32(2), src.calls.Load())
	assert.False(t, svc.RefreshedAt().Before(first))

	page, err := svc.GetUsers(ctx, domain.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
}

func TestListAllAndStats(t *testing.T) {
	svc, _, _, _ := newDirectory(t, makeUsers(8))
	ctx := context.Background()

	all, err := svc.ListAll(ctx, domain.Filter{Organization: "Lendsqr"}, domain.SortByID)
	require.NoError(t, err)
	var got []string
	for _, u := range all {
		got = append(got, u.ID)
	}
	assert.Equal(t, []string{"3", "6"}, got)

	_, err = svc.ListAll(ctx, domain.Filter{Date: "yesterday"}, domain.SortByID)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[domain.StatusActive])
	assert.Equal(t, int64(2), stats.ByStatus[domain.StatusInactive])
	assert.Equal(t, int64(2), stats.ByStatus[domain.StatusPending])
	assert.Equal(t, int64(2), stats.ByStatus[domain.StatusBlacklisted])
}

func TestCacheState(t *testing.T) {
	state := NewCacheState()
	assert.False(t, state.IsFresh())
	assert.True(t, state.RefreshedAt().IsZero())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	state.MarkFresh(at)
	assert.True(t, state.IsFresh())
	assert.Equal(t, at, state.RefreshedAt())

	state.Reset()
	assert.False(t, state.IsFresh())
}

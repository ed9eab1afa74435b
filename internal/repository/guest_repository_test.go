package repository_test

import (
	"context"
	"math"
	"sort"
	"sync"
	"testing"

	"wedding-guest-list/internal/model"
	"wedding-guest-list/internal/repository"
	apperrors "wedding-guest-list/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoFactory returns an initialized, empty repository.
type repoFactory func(t *testing.T) repository.GuestRepository

func guestInput(name string, count int, side model.Side, attendance model.Attendance) model.GuestInput {
	return model.GuestInput{Name: name, Count: count, Side: side, Attendance: attendance}
}

func createTestGuest(t *testing.T, repo repository.GuestRepository, in model.GuestInput) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	return id
}

func assertGuestCount(t *testing.T, repo repository.GuestRepository, expected int) {
	t.Helper()
	guests, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, guests, expected)
}

// runGuestRepositoryContract checks the behaviour every backend must share.
func runGuestRepositoryContract(t *testing.T, newRepo repoFactory) {
	ctx := context.Background()

	t.Run("Initialize_Idempotent", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Initialize(ctx))
		assertGuestCount(t, repo, 0)

		createTestGuest(t, repo, guestInput("Alice", 2, model.SideBride, model.AttendanceLikely))
		require.NoError(t, repo.Initialize(ctx))
		require.NoError(t, repo.Initialize(ctx))
		assertGuestCount(t, repo, 1)
	})

	t.Run("Create_ThenFindByID", func(t *testing.T) {
		repo := newRepo(t)

		id, err := repo.Create(ctx, guestInput("Alice", 2, model.SideBride, model.AttendanceLikely))
		require.NoError(t, err)
		assert.Positive(t, id)

		found, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, "Alice", found.Name)
		assert.Equal(t, 2, found.Count)
		assert.Equal(t, model.SideBride, found.Side)
		assert.Equal(t, model.AttendanceLikely, found.Attendance)
		assert.False(t, found.CreatedAt.IsZero())
		assert.True(t, found.CreatedAt.Equal(found.UpdatedAt), "created_at %v != updated_at %v", found.CreatedAt, found.UpdatedAt)
	})

	t.Run("Create_ConstraintViolation", func(t *testing.T) {
		cases := map[string]model.GuestInput{
			"EmptyName":         guestInput("", 1, model.SideBride, model.AttendanceLikely),
			"ZeroCount":         guestInput("X", 0, model.SideBride, model.AttendanceLikely),
			"NegativeCount":     guestInput("X", -1, model.SideGroom, model.AttendanceLikely),
			"HugeCount":         guestInput("X", math.MaxInt64, model.SideGroom, model.AttendanceLikely),
			"UnknownSide":       guestInput("X", 1, model.Side("both"), model.AttendanceLikely),
			"UnknownAttendance": guestInput("X", 1, model.SideGroom, model.Attendance("maybe")),
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				repo := newRepo(t)

				id, err := repo.Create(ctx, in)

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
				assert.Zero(t, id)
				assertGuestCount(t, repo, 0)
			})
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := newRepo(t)
		createTestGuest(t, repo, guestInput("Alice", 2, model.SideBride, model.AttendanceLikely))

		_, err := repo.FindByID(ctx, 99999)
		assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)
		assert.NotErrorIs(t, err, apperrors.ErrStorage)

		updated, err := repo.Update(ctx, 99999, guestInput("Nobody", 1, model.SideGroom, model.AttendanceLikely))
		require.NoError(t, err)
		assert.False(t, updated)

		deleted, err := repo.Delete(ctx, 99999)
		require.NoError(t, err)
		assert.False(t, deleted)

		guests, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, guests, 1)
		assert.Equal(t, "Alice", guests[0].Name)
	})

	t.Run("Update_Success", func(t *testing.T) {
		repo := newRepo(t)
		id := createTestGuest(t, repo, guestInput("Bob", 1, model.SideGroom, model.AttendanceUnlikely))
		before, err := repo.FindByID(ctx, id)
		require.NoError(t, err)

		updated, err := repo.Update(ctx, id, guestInput("Robert", 4, model.SideBride, model.AttendanceLikely))
		require.NoError(t, err)
		assert.True(t, updated)

		after, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, after.ID)
		assert.Equal(t, "Robert", after.Name)
		assert.Equal(t, 4, after.Count)
		assert.Equal(t, model.SideBride, after.Side)
		assert.Equal(t, model.AttendanceLikely, after.Attendance)
		assert.True(t, after.CreatedAt.Equal(before.CreatedAt), "created_at changed")
		assert.False(t, after.UpdatedAt.Before(before.UpdatedAt), "updated_at moved backwards")
		assert.False(t, after.UpdatedAt.Before(after.CreatedAt))
	})

	t.Run("Update_ConstraintViolation_LeavesRecord", func(t *testing.T) {
		repo := newRepo(t)
		id := createTestGuest(t, repo, guestInput("Bob", 1, model.SideGroom, model.AttendanceUnlikely))

		updated, err := repo.Update(ctx, id, guestInput("Bob", 0, model.SideGroom, model.AttendanceUnlikely))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
		assert.False(t, updated)

		found, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, found.Count)
	})

	t.Run("Delete_IDNeverReused", func(t *testing.T) {
		repo := newRepo(t)
		createTestGuest(t, repo, guestInput("Alice", 2, model.SideBride, model.AttendanceLikely))
		last := createTestGuest(t, repo, guestInput("Bob", 1, model.SideGroom, model.AttendanceUnlikely))

		deleted, err := repo.Delete(ctx, last)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.FindByID(ctx, last)
		assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)

		again, err := repo.Delete(ctx, last)
		require.NoError(t, err)
		assert.False(t, again)

		next := createTestGuest(t, repo, guestInput("Carol", 3, model.SideBride, model.AttendanceUnlikely))
		assert.Greater(t, next, last)
		assertGuestCount(t, repo, 2)
	})

	t.Run("List_OrderedByName", func(t *testing.T) {
		repo := newRepo(t)

		guests, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, guests)

		carol := createTestGuest(t, repo, guestInput("Carol", 3, model.SideBride, model.AttendanceUnlikely))
		alice1 := createTestGuest(t, repo, guestInput("Alice", 2, model.SideBride, model.AttendanceLikely))
		bob := createTestGuest(t, repo, guestInput("Bob", 1, model.SideGroom, model.AttendanceUnlikely))
		alice2 := createTestGuest(t, repo, guestInput("Alice", 1, model.SideGroom, model.AttendanceLikely))

		guests, err = repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, guests, 4)

		ids := make([]int64, 0, len(guests))
		for _, g := range guests {
			ids = append(ids, g.ID)
		}
		assert.Equal(t, []int64{alice1, alice2, bob, carol}, ids)
		assert.True(t, sort.SliceIsSorted(guests, func(i, j int) bool {
			return guests[i].Name < guests[j].Name
		}))
	})

	t.Run("Statistics_Empty", func(t *testing.T) {
		repo := newRepo(t)

		stats, err := repo.Statistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, model.Statistics{Total: 0, Likely: 0, Groom: 0, Bride: 0}, stats)
	})

	t.Run("Statistics_Scenario", func(t *testing.T) {
		repo := newRepo(t)
		createTestGuest(t, repo, guestInput("Alice", 2, model.SideBride, model.AttendanceLikely))
		bob := createTestGuest(t, repo, guestInput("Bob", 1, model.SideGroom, model.AttendanceUnlikely))
		createTestGuest(t, repo, guestInput("Carol", 3, model.SideBride, model.AttendanceUnlikely))

		stats, err := repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.Statistics{Total: 6, Likely: 2, Groom: 1, Bride: 5}, stats)

		_, err = repo.Delete(ctx, bob)
		require.NoError(t, err)

		stats, err = repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.Statistics{Total: 5, Likely: 2, Groom: 0, Bride: 5}, stats)
	})

	t.Run("Statistics_LargeCounts", func(t *testing.T) {
		repo := newRepo(t)
		createTestGuest(t, repo, guestInput("Alice", model.MaxGuestCount, model.SideBride, model.AttendanceLikely))
		createTestGuest(t, repo, guestInput("Bob", model.MaxGuestCount, model.SideGroom, model.AttendanceLikely))
		createTestGuest(t, repo, guestInput("Carol", 1, model.SideBride, model.AttendanceUnlikely))

		stats, err := repo.Statistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2*model.MaxGuestCount+1, stats.Total)
		assert.Equal(t, 2*model.MaxGuestCount, stats.Likely)
		assert.Equal(t, model.MaxGuestCount, stats.Groom)
		assert.Equal(t, model.MaxGuestCount+1, stats.Bride)
	})

	t.Run("ConcurrentCreate", func(t *testing.T) {
		repo := newRepo(t)
		const workers = 20

		var wg sync.WaitGroup
		ids := make([]int64, workers)
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids[i], errs[i] = repo.Create(ctx, guestInput("Guest", 1, model.SideGroom, model.AttendanceLikely))
			}(i)
		}
		wg.Wait()

		seen := make(map[int64]bool, workers)
		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
			seen[ids[i]] = true
		}

		stats, err := repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, workers, stats.Total)
		assert.Equal(t, workers, stats.Groom)
	})
}

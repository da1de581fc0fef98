package service

import (
	"context"
	"testing"

	"festflow/internal/domain"
	"festflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allocate(t *testing.T, f *fixture, participantID string) (Allocation, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	alloc, err := f.allocator.Allocate(ctx, tx, participantID)
	if err != nil {
		require.NoError(t, tx.Rollback())
		return alloc, err
	}
	require.NoError(t, tx.Commit())
	return alloc, nil
}

func TestAllocate_PicksEmptiestRoom(t *testing.T) {
	f := newFixture(t, nil)
	busy := f.room(t, "101", domain.GenderMale, 8)
	quiet := f.room(t, "102", domain.GenderMale, 8)
	f.store.SetOccupancy(busy, 5)
	f.store.SetOccupancy(quiet, 2)

	pid := f.participant(t, "Arjun", domain.GenderMale)
	alloc, err := allocate(t, f, pid)
	require.NoError(t, err)
	assert.Equal(t, AllocationCreated, alloc.Outcome)
	assert.Equal(t, quiet, alloc.Reservation.RoomID)
	assert.Equal(t, 3, f.occupancy(t, quiet))
	assert.Equal(t, 5, f.occupancy(t, busy))
}

func TestAllocate_TieBreakByRoomID(t *testing.T) {
	f := newFixture(t, nil)
	a := f.room(t, "201", domain.GenderFemale, 4)
	b := f.room(t, "202", domain.GenderFemale, 4)
	want := a
	if b < a {
		want = b
	}

	for i := 0; i < 3; i++ {
		pid := f.participant(t, "Meera", domain.GenderFemale)
		alloc, err := allocate(t, f, pid)
		require.NoError(t, err)
		if i == 0 {
			assert.Equal(t, want, alloc.Reservation.RoomID)
		}
	}
	// 三人后两间房分别为 2 和 1（均衡分布）
	assert.Equal(t, 3, f.occupancy(t, a)+f.occupancy(t, b))
	assert.Equal(t, 2, f.occupancy(t, want))
}

func TestAllocate_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	room := f.room(t, "101", domain.GenderMale, 3)
	pid := f.participant(t, "Kabir", domain.GenderMale)

	first, err := allocate(t, f, pid)
	require.NoError(t, err)
	require.Equal(t, AllocationCreated, first.Outcome)

	second, err := allocate(t, f, pid)
	require.NoError(t, err)
	assert.Equal(t, AllocationExisting, second.Outcome)
	assert.Equal(t, first.Reservation.RoomID, second.Reservation.RoomID)
	assert.Equal(t, 1, f.occupancy(t, room))
}

func TestAllocate_MatchesGender(t *testing.T) {
	f := newFixture(t, nil)
	f.room(t, "101", domain.GenderMale, 3)
	female := f.room(t, "102", domain.GenderFemale, 3)
	f.store.SetOccupancy(female, 2)

	pid := f.participant(t, "Diya", domain.GenderFemale)
	alloc, err := allocate(t, f, pid)
	require.NoError(t, err)
	assert.Equal(t, female, alloc.Reservation.RoomID)
}

func TestAllocate_NoRoomIsNotAnError(t *testing.T) {
	f := newFixture(t, nil)
	full := f.room(t, "101", domain.GenderMale, 2)
	f.store.SetOccupancy(full, 2)
	f.room(t, "102", domain.GenderFemale, 2)

	pid := f.participant(t, "Rohan", domain.GenderMale)
	alloc, err := allocate(t, f, pid)
	require.NoError(t, err)
	assert.Equal(t, AllocationNoRoom, alloc.Outcome)
	assert.Nil(t, alloc.Reservation)
	assert.Equal(t, 2, f.occupancy(t, full))
}

func TestAllocate_ParticipantMissing(t *testing.T) {
	f := newFixture(t, nil)
	f.room(t, "101", domain.GenderMale, 2)

	_, err := allocate(t, f, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// contendedTx 模拟并发：指定房间的第一次自增因被抢先而失败
type contendedTx struct {
	repository.Tx
	filled map[string]bool
}

func (c *contendedTx) IncrementOccupancy(ctx context.Context, roomID string) error {
	if c.filled[roomID] {
		delete(c.filled, roomID)
		return repository.ErrRoomFull
	}
	return c.Tx.IncrementOccupancy(ctx, roomID)
}

func TestAllocate_MovesOnWhenRoomFillsConcurrently(t *testing.T) {
	f := newFixture(t, nil)
	first := f.room(t, "101", domain.GenderMale, 4)
	second := f.room(t, "102", domain.GenderMale, 4)
	f.store.SetOccupancy(second, 1)
	pid := f.participant(t, "Vikram", domain.GenderMale)

	ctx := context.Background()
	inner, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	tx := &contendedTx{Tx: inner, filled: map[string]bool{first: true}}

	alloc, err := f.allocator.Allocate(ctx, tx, pid)
	require.NoError(t, err)
	assert.Equal(t, second, alloc.Reservation.RoomID)
	require.NoError(t, tx.Commit())

	assert.Equal(t, 0, f.occupancy(t, first))
	assert.Equal(t, 2, f.occupancy(t, second))
}

func TestAllocate_ConstraintViolationStopsWithoutRetry(t *testing.T) {
	f := newFixture(t, nil)
	f.room(t, "101", domain.GenderMale, 4)
	f.room(t, "102", domain.GenderMale, 4)
	pid := f.participant(t, "Vikram", domain.GenderMale)

	ctx := context.Background()
	inner, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	defer inner.Rollback()
	tx := &rejectingTx{Tx: inner}

	_, err = f.allocator.Allocate(ctx, tx, pid)
	assert.ErrorIs(t, err, domain.ErrDataConsistencyFault)
	assert.Equal(t, 1, tx.calls)
}

package service

import (
	"context"
	"fmt"
	"testing"

	"festflow/internal/domain"
	"festflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_IncrementMissingRecordIsConsistencyFault(t *testing.T) {
	f := newFixture(t, nil)
	room := f.room(t, "101", domain.GenderMale, 2)
	f.store.DropOccupancy(room)

	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = f.ledger.Increment(ctx, tx, room)
	assert.ErrorIs(t, err, domain.ErrDataConsistencyFault)
	assert.ErrorIs(t, err, repository.ErrOccupancyMissing)
}

func TestLedger_IncrementFullRoomReturnsStorageSentinel(t *testing.T) {
	f := newFixture(t, nil)
	room := f.room(t, "101", domain.GenderMale, 1)
	f.store.SetOccupancy(room, 1)

	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	assert.ErrorIs(t, f.ledger.Increment(ctx, tx, room), repository.ErrRoomFull)
}

// rejectingTx 模拟数据库触发器拒绝自增
type rejectingTx struct {
	repository.Tx
	calls int
}

func (r *rejectingTx) IncrementOccupancy(context.Context, string) error {
	r.calls++
	return fmt.Errorf("failed to increment occupancy: %w", repository.ErrCapacityViolation)
}

func TestLedger_IncrementConstraintViolationIsConsistencyFault(t *testing.T) {
	f := newFixture(t, nil)
	room := f.room(t, "101", domain.GenderMale, 2)

	ctx := context.Background()
	inner, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	defer inner.Rollback()

	err = f.ledger.Increment(ctx, &rejectingTx{Tx: inner}, room)
	assert.ErrorIs(t, err, domain.ErrDataConsistencyFault)
	assert.NotErrorIs(t, err, repository.ErrRoomFull)
}

func TestLedger_DecrementToleratesMissingRecord(t *testing.T) {
	f := newFixture(t, nil)
	room := f.room(t, "101", domain.GenderMale, 2)
	f.store.DropOccupancy(room)

	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	updated, err := f.ledger.Decrement(ctx, tx, room, 1)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestReservationManager_ReleaseWithoutReservation(t *testing.T) {
	f := newFixture(t, nil)
	pid := f.participant(t, "Nisha", domain.GenderFemale)

	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	res, err := f.reservations.Release(ctx, tx, pid)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestReservationManager_ReserveAndRelease(t *testing.T) {
	f := newFixture(t, nil)
	room := f.room(t, "101", domain.GenderFemale, 2)
	pid := f.participant(t, "Nisha", domain.GenderFemale)

	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	_, err = f.reservations.Reserve(ctx, tx, pid, room)
	require.NoError(t, err)

	_, err = f.reservations.Reserve(ctx, tx, pid, room)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.Equal(t, 0, f.occupancy(t, room))

	tx, err = f.store.BeginTx(ctx)
	require.NoError(t, err)
	_, err = f.reservations.Reserve(ctx, tx, pid, room)
	require.NoError(t, err)
	res, err := f.reservations.Release(ctx, tx, pid)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, room, res.RoomID)
	require.NoError(t, tx.Commit())
	assert.Equal(t, 0, f.occupancy(t, room))
}

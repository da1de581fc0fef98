package service

import (
	"context"
	"testing"
	"time"

	"festflow/internal/broadcast"
	"festflow/internal/domain"
	"festflow/internal/repository"
	"festflow/internal/store"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRegistration(ctx context.Context, event broadcast.RegistrationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fixture struct {
	store         *repository.MemoryStore
	ledger        *OccupancyLedger
	reservations  *ReservationManager
	allocator     *RoomAllocator
	registration  RegistrationService
	accommodation AccommodationService
	catalog       CatalogService
	publisher     *mockPublisher
}

func newFixture(t *testing.T, kv store.KV) *fixture {
	t.Helper()
	logger := zap.NewNop()
	st := repository.NewMemoryStore()
	ledger := NewOccupancyLedger(logger)
	reservations := NewReservationManager(ledger, logger)
	allocator := NewRoomAllocator(reservations, 4, logger)
	pub := &mockPublisher{}
	pub.On("PublishRegistration", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &fixture{
		store:         st,
		ledger:        ledger,
		reservations:  reservations,
		allocator:     allocator,
		registration:  NewRegistrationService(st, allocator, reservations, pub, kv, time.Minute, logger),
		accommodation: NewAccommodationService(st, allocator, reservations, kv, time.Minute, logger),
		catalog:       NewCatalogService(st, logger),
		publisher:     pub,
	}
}

func (f *fixture) room(t *testing.T, no string, g domain.Gender, capacity int) string {
	t.Helper()
	id, err := f.store.CreateRoom(context.Background(), &domain.Room{
		BuildingName: "Hostel", RoomNo: no, Gender: g, MaxCapacity: capacity,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) event(t *testing.T, maxTeamSize int) string {
	t.Helper()
	ev, err := f.catalog.CreateEvent(context.Background(), CreateEventRequest{
		Name: "Hackathon", Category: "technical", EventDate: "2026-03-14", EventTime: "10:00", MaxTeamSize: maxTeamSize,
	})
	require.NoError(t, err)
	return ev.EventID
}

// participant 在独立事务中创建参与者（无房间）
func (f *fixture) participant(t *testing.T, name string, g domain.Gender) string {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	id, err := tx.CreateParticipant(ctx, &domain.Participant{Name: name, Gender: g, MerchSize: "M"})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return id
}

func (f *fixture) occupancy(t *testing.T, roomID string) int {
	t.Helper()
	n, ok := f.store.Occupancy(roomID)
	require.True(t, ok)
	return n
}

func member(name, gender string) ParticipantSpec {
	return ParticipantSpec{Name: name, Gender: gender, MerchSize: "L"}
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"festflow/internal/domain"
	"festflow/internal/repository"
	"festflow/internal/store"

	"go.uber.org/zap"
)

// AccommodationService 单个参与者的住宿分配/释放与房间管理
type AccommodationService interface {
	AllocateRoom(ctx context.Context, participantID string) (*AllocateRoomResponse, error)
	ReleaseReservation(ctx context.Context, participantID string) (*ReleaseReservationResponse, error)

	CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomView, error)
	ListRoomOccupancy(ctx context.Context) ([]RoomView, error)
	ListRoomParticipants(ctx context.Context, roomID string) ([]ParticipantView, error)
}

type accommodationService struct {
	store        repository.Store
	allocator    *RoomAllocator
	reservations *ReservationManager
	cache        *occupancyCache
	logger       *zap.Logger
}

func NewAccommodationService(
	st repository.Store,
	allocator *RoomAllocator,
	reservations *ReservationManager,
	kv store.KV,
	cacheTTL time.Duration,
	logger *zap.Logger,
) AccommodationService {
	return &accommodationService{
		store:        st,
		allocator:    allocator,
		reservations: reservations,
		cache:        newOccupancyCache(kv, cacheTTL, logger),
		logger:       logger,
	}
}

type AllocateRoomResponse struct {
	ParticipantID string            `json:"participant_id"`
	Outcome       AllocationOutcome `json:"outcome"`
	RoomID        string            `json:"room_id,omitempty"`
}

type ReleaseReservationResponse struct {
	ParticipantID string `json:"participant_id"`
	Released      bool   `json:"released"`
	RoomID        string `json:"room_id,omitempty"`
}

type CreateRoomRequest struct {
	BuildingName string `json:"building_name"`
	RoomNo       string `json:"room_no"`
	Gender       string `json:"gender"`
	MaxCapacity  int    `json:"max_capacity"`
}

// AllocateRoom 独立事务中分配；无房间时 Outcome 为 no_room
func (s *accommodationService) AllocateRoom(ctx context.Context, participantID string) (*AllocateRoomResponse, error) {
	const op = "accommodation.allocate"

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer tx.Rollback()

	alloc, err := s.allocator.Allocate(ctx, tx, participantID)
	if err != nil {
		return nil, err
	}
	resp := &AllocateRoomResponse{ParticipantID: participantID, Outcome: alloc.Outcome}
	if alloc.Reservation != nil {
		resp.RoomID = alloc.Reservation.RoomID
	}
	if alloc.Outcome != AllocationCreated {
		return resp, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError(op, err)
	}
	s.cache.invalidate(ctx)
	s.logger.Info("Room allocated",
		zap.String("participant_id", participantID),
		zap.String("room_id", resp.RoomID),
	)
	return resp, nil
}

// ReleaseReservation 独立事务中释放；参与者无预留时 Released=false
func (s *accommodationService) ReleaseReservation(ctx context.Context, participantID string) (*ReleaseReservationResponse, error) {
	const op = "accommodation.release"

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer tx.Rollback()

	if _, err := tx.GetParticipant(ctx, participantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(op, "participant", participantID)
		}
		return nil, storeError(op, err)
	}

	res, err := s.reservations.Release(ctx, tx, participantID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &ReleaseReservationResponse{ParticipantID: participantID}, nil
	}
	if err := tx.Commit(); err != nil {
		return nil, storeError(op, err)
	}
	s.cache.invalidate(ctx)
	s.logger.Info("Reservation released",
		zap.String("participant_id", participantID),
		zap.String("room_id", res.RoomID),
	)
	return &ReleaseReservationResponse{ParticipantID: participantID, Released: true, RoomID: res.RoomID}, nil
}

func (s *accommodationService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomView, error) {
	const op = "accommodation.create_room"

	building := strings.TrimSpace(req.BuildingName)
	roomNo := strings.TrimSpace(req.RoomNo)
	if building == "" || roomNo == "" {
		return nil, domain.InvalidArgument(op, "building_name and room_no are required")
	}
	gender, ok := domain.ParseGender(req.Gender)
	if !ok {
		return nil, domain.InvalidArgument(op, "gender must be MALE or FEMALE")
	}
	if req.MaxCapacity <= 0 {
		return nil, domain.InvalidArgument(op, "max_capacity must be positive")
	}

	room := &domain.Room{BuildingName: building, RoomNo: roomNo, Gender: gender, MaxCapacity: req.MaxCapacity}
	id, err := s.store.CreateRoom(ctx, room)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.Wrap(domain.KindConflict, op, "room "+building+"/"+roomNo+" already exists", err)
		}
		return nil, storeError(op, err)
	}
	room.RoomID = id
	s.cache.invalidate(ctx)

	view := NewRoomView(domain.RoomWithOccupancy{Room: *room})
	return &view, nil
}

func (s *accommodationService) ListRoomOccupancy(ctx context.Context) ([]RoomView, error) {
	gen, cacheable := s.cache.generation(ctx)
	if cacheable {
		if cached, ok := loadCached[[]RoomView](ctx, s.cache, occupancyKey(gen)); ok {
			return cached, nil
		}
	}

	rooms, err := s.store.ListRoomsWithOccupancy(ctx)
	if err != nil {
		return nil, storeError("accommodation.list_occupancy", err)
	}
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, NewRoomView(r))
	}
	if cacheable {
		s.cache.put(ctx, occupancyKey(gen), out)
	}
	return out, nil
}

func (s *accommodationService) ListRoomParticipants(ctx context.Context, roomID string) ([]ParticipantView, error) {
	const op = "accommodation.list_room_participants"

	gen, cacheable := s.cache.generation(ctx)
	key := roomParticipantsKey(gen, roomID)
	if cacheable {
		if cached, ok := loadCached[[]ParticipantView](ctx, s.cache, key); ok {
			return cached, nil
		}
	}

	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(op, "room", roomID)
		}
		return nil, storeError(op, err)
	}
	participants, err := s.store.ListRoomParticipants(ctx, roomID)
	if err != nil {
		return nil, storeError(op, err)
	}
	out := make([]ParticipantView, 0, len(participants))
	for _, p := range participants {
		out = append(out, NewParticipantView(p, roomID))
	}
	if cacheable {
		s.cache.put(ctx, key, out)
	}
	return out, nil
}

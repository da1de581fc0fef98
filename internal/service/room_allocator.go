package service

import (
	"context"
	"errors"

	"festflow/internal/domain"
	"festflow/internal/repository"

	"go.uber.org/zap"
)

// AllocationOutcome 分配结果类型
type AllocationOutcome string

const (
	AllocationCreated  AllocationOutcome = "created"
	AllocationExisting AllocationOutcome = "existing"
	// AllocationNoRoom 无可用房间（正常结果，不是错误）
	AllocationNoRoom AllocationOutcome = "no_room"
)

// Allocation Allocate 的返回值；NoRoom 时 Reservation 为 nil
type Allocation struct {
	Outcome     AllocationOutcome
	Reservation *domain.Reservation
}

// AllocatorTx 分配需要的事务能力
type AllocatorTx interface {
	ReservationTx
	repository.RoomFinder
	GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error)
}

const (
	defaultCandidateLimit = 8
	allocationRounds      = 3
)

// RoomAllocator 同性别房间中选当前最空的一间（occupancy ASC, room_id ASC）
type RoomAllocator struct {
	reservations   *ReservationManager
	candidateLimit int
	logger         *zap.Logger
}

// NewRoomAllocator candidateLimit 为每轮查询的候选数
func NewRoomAllocator(reservations *ReservationManager, candidateLimit int, logger *zap.Logger) *RoomAllocator {
	if candidateLimit <= 0 {
		candidateLimit = defaultCandidateLimit
	}
	return &RoomAllocator{reservations: reservations, candidateLimit: candidateLimit, logger: logger}
}

// Allocate 为参与者分配房间；已有预留时原样返回
func (a *RoomAllocator) Allocate(ctx context.Context, tx AllocatorTx, participantID string) (Allocation, error) {
	const op = "allocator.allocate"

	p, err := tx.GetParticipant(ctx, participantID)
	if errors.Is(err, repository.ErrNotFound) {
		return Allocation{}, domain.NotFound(op, "participant", participantID)
	}
	if err != nil {
		return Allocation{}, storeError(op, err)
	}

	existing, err := tx.GetReservation(ctx, participantID)
	if err == nil {
		return Allocation{Outcome: AllocationExisting, Reservation: existing}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Allocation{}, storeError(op, err)
	}

	gender, ok := domain.ParseGender(string(p.Gender))
	if !ok {
		return Allocation{}, domain.InvalidArgument(op, "participant %s has unknown gender %q", participantID, p.Gender)
	}

	// 并发下候选房间可能在查询与自增之间被占满，换下一间；整轮失败后重新查询
	for round := 0; round < allocationRounds; round++ {
		rooms, err := tx.ListEligibleRooms(ctx, gender, a.candidateLimit)
		if err != nil {
			return Allocation{}, storeError(op, err)
		}
		if len(rooms) == 0 {
			break
		}
		for _, room := range rooms {
			res, err := a.reservations.Reserve(ctx, tx, participantID, room.RoomID)
			if errors.Is(err, repository.ErrRoomFull) {
				a.logger.Debug("Room filled concurrently, trying next candidate",
					zap.String("room_id", room.RoomID),
					zap.Int("round", round),
				)
				continue
			}
			if err != nil {
				return Allocation{}, err
			}
			return Allocation{Outcome: AllocationCreated, Reservation: res}, nil
		}
	}

	a.logger.Info("No room available",
		zap.String("participant_id", participantID),
		zap.String("gender", string(gender)),
	)
	return Allocation{Outcome: AllocationNoRoom}, nil
}

package service

import (
	"context"
	"errors"

	"festflow/internal/domain"
	"festflow/internal/repository"

	"go.uber.org/zap"
)

// ReservationTx 预留操作需要的事务能力
type ReservationTx interface {
	repository.ReservationWriter
	repository.OccupancyLedgerTx
}

// ReservationManager 参与者 -> 房间 预留；每次增删一条并同步计数
type ReservationManager struct {
	ledger *OccupancyLedger
	logger *zap.Logger
}

func NewReservationManager(ledger *OccupancyLedger, logger *zap.Logger) *ReservationManager {
	return &ReservationManager{ledger: ledger, logger: logger}
}

// Reserve 计数自增 + 写预留行
// 先自增：自增即容量检查，失败时不会留下预留行
func (m *ReservationManager) Reserve(ctx context.Context, tx ReservationTx, participantID, roomID string) (*domain.Reservation, error) {
	if err := m.ledger.Increment(ctx, tx, roomID); err != nil {
		return nil, err
	}
	if err := tx.InsertReservation(ctx, participantID, roomID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.Wrap(domain.KindConflict, "reservation.reserve",
				"participant already holds a reservation", err)
		}
		return nil, storeError("reservation.reserve", err)
	}
	m.logger.Debug("Reservation created",
		zap.String("participant_id", participantID),
		zap.String("room_id", roomID),
	)
	return &domain.Reservation{ParticipantID: participantID, RoomID: roomID}, nil
}

// Release 删除参与者的预留并计数减一；无预留时返回 (nil, nil)
func (m *ReservationManager) Release(ctx context.Context, tx ReservationTx, participantID string) (*domain.Reservation, error) {
	res, err := tx.GetReservation(ctx, participantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("reservation.release", err)
	}
	if err := tx.DeleteReservation(ctx, participantID); err != nil {
		return nil, storeError("reservation.release", err)
	}
	if _, err := m.ledger.Decrement(ctx, tx, res.RoomID, 1); err != nil {
		return nil, err
	}
	m.logger.Debug("Reservation released",
		zap.String("participant_id", participantID),
		zap.String("room_id", res.RoomID),
	)
	return res, nil
}

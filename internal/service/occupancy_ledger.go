package service

import (
	"context"
	"errors"

	"festflow/internal/domain"
	"festflow/internal/repository"

	"go.uber.org/zap"
)

// OccupancyLedger 房间占用计数；只在调用方事务内修改，从不自行提交
type OccupancyLedger struct {
	logger *zap.Logger
}

func NewOccupancyLedger(logger *zap.Logger) *OccupancyLedger {
	return &OccupancyLedger{logger: logger}
}

// Increment 原子条件自增
// 计数行缺失或约束拒绝返回 DataConsistencyFault；房间已满返回 repository.ErrRoomFull（由分配器换房重试）
func (l *OccupancyLedger) Increment(ctx context.Context, tx repository.OccupancyLedgerTx, roomID string) error {
	err := tx.IncrementOccupancy(ctx, roomID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRoomFull):
		return err
	case errors.Is(err, repository.ErrOccupancyMissing):
		l.logger.Error("Occupancy record missing for room",
			zap.String("room_id", roomID),
		)
		return domain.Wrap(domain.KindDataConsistencyFault, "ledger.increment",
			"occupancy record missing for room "+roomID, err)
	case errors.Is(err, repository.ErrCapacityViolation):
		l.logger.Error("Occupancy constraint rejected increment",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
		return domain.Wrap(domain.KindDataConsistencyFault, "ledger.increment",
			"occupancy constraint violated for room "+roomID, err)
	}
	return storeError("ledger.increment", err)
}

// Decrement 减 by 并截断到 0；计数行缺失视为可容忍的漂移，返回 false
func (l *OccupancyLedger) Decrement(ctx context.Context, tx repository.OccupancyLedgerTx, roomID string, by int) (bool, error) {
	if by <= 0 {
		return false, nil
	}
	updated, err := tx.DecrementOccupancy(ctx, roomID, by)
	if err != nil {
		return false, storeError("ledger.decrement", err)
	}
	if !updated {
		l.logger.Warn("Occupancy record missing on decrement, ignoring",
			zap.String("room_id", roomID),
			zap.Int("by", by),
		)
	}
	return updated, nil
}

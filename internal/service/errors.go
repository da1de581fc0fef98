package service

import (
	"errors"
	"fmt"

	"festflow/internal/domain"
	"festflow/internal/repository"
)

// storeError 将存储层 sentinel 映射为 domain.Error；其余错误原样包装（对外为 internal error）
func storeError(op string, err error) error {
	var de *domain.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return domain.Wrap(domain.KindNotFound, op, "record not found", err)
	case errors.Is(err, repository.ErrForeignKey):
		return domain.Wrap(domain.KindNotFound, op, "referenced record not found", err)
	case errors.Is(err, repository.ErrDuplicate):
		return domain.Wrap(domain.KindConflict, op, "record already exists", err)
	case errors.Is(err, repository.ErrOccupancyMissing):
		return domain.Wrap(domain.KindDataConsistencyFault, op, "occupancy record missing", err)
	case errors.Is(err, repository.ErrCapacityViolation):
		return domain.Wrap(domain.KindDataConsistencyFault, op, "occupancy constraint violated", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

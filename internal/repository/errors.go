package repository

import (
	"fmt"

	apperrors "wedding-guest-list/pkg/app_errors"
)

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperrors.ErrStorage, op, err)
}

func constraintError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperrors.ErrConstraintViolation, op, err)
}

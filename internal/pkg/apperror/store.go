package apperror

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые транслируются в доменный конфликт.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// FromStore переводит ошибки ограничений хранилища в доменные ошибки.
// Остальные ошибки возвращаются без изменений.
func FromStore(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgUniqueViolation:
		return Wrap(err, ErrCodeConflict, "запись уже существует")
	case pgForeignKeyViolation:
		return Wrap(err, ErrCodeConflict, "связанная запись не найдена")
	case pgCheckViolation:
		return Wrap(err, ErrCodeConflict, "значение нарушает ограничения данных")
	default:
		return err
	}
}

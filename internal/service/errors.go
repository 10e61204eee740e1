package service

import (
	"errors"

	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/repository/common"
)

var (
	errCartItemNotFound     = apperror.NotFound("товар отсутствует в корзине")
	errImageNotFound        = apperror.NotFound("изображение не найдено")
	errReportNotFound       = apperror.NotFound("жалоба не найдена")
	errNotificationNotFound = apperror.NotFound("уведомление не найдено")
	errMessageNotFound      = apperror.NotFound("сообщение не найдено")
	errCategoryInUse        = apperror.Conflict("в категории есть товары")
	errTooManyImages        = apperror.Conflict("превышено количество изображений товара")
	errStatusChanged        = apperror.Conflict("статус уже изменён, обновите данные")
)

// repoErrors сопоставляет ошибки хранилища доменным ошибкам.
var repoErrors = []struct {
	from error
	to   *apperror.AppError
}{
	{repository.ErrUserNotFound, apperror.ErrUserNotFound},
	{repository.ErrProductNotFound, apperror.ErrProductNotFound},
	{repository.ErrCategoryNotFound, apperror.ErrCategoryNotFound},
	{repository.ErrPurchaseNotFound, apperror.ErrPurchaseNotFound},
	{repository.ErrRoomNotFound, apperror.ErrRoomNotFound},
	{repository.ErrProductUnavailable, apperror.ErrProductUnavailable},
	{repository.ErrCartItemNotFound, errCartItemNotFound},
	{repository.ErrImageNotFound, errImageNotFound},
	{repository.ErrReportNotFound, errReportNotFound},
	{repository.ErrNotificationNotFound, errNotificationNotFound},
	{repository.ErrMessageNotFound, errMessageNotFound},
	{repository.ErrCategoryInUse, errCategoryInUse},
	{repository.ErrTooManyImages, errTooManyImages},
	{common.ErrStatusConflict, errStatusChanged},
}

// translate переводит ошибку репозитория в AppError. Неизвестные ошибки
// хранилища проходят через apperror.FromStore и остаются внутренними.
func translate(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range repoErrors {
		if errors.Is(err, m.from) {
			return m.to
		}
	}
	return apperror.FromStore(err)
}

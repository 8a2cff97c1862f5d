package repository

import (
	"context"
	"errors"

	"github.com/RoGogDBD/inventory/internal/models"
)

// ErrItemNotFound возвращается, когда записи с указанным id нет.
var ErrItemNotFound = errors.New("item not found")

// ItemReader описывает чтение записей инвентаря.
type ItemReader interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id int64) (*models.Item, error)
}

// ItemWriter описывает изменение записей инвентаря.
type ItemWriter interface {
	Insert(ctx context.Context, name, description string, photoPath *string) (*models.Item, error)
	// Update перезаписывает только переданные непустые поля.
	Update(ctx context.Context, id int64, name, description *string) (*models.Item, error)
	SetPhoto(ctx context.Context, id int64, photoPath *string) (*models.Item, error)
	// Delete удаляет запись и возвращает её прежнее состояние.
	Delete(ctx context.Context, id int64) (*models.Item, error)
}

// ItemStore описывает операции хранилища записей инвентаря.
type ItemStore interface {
	ItemReader
	ItemWriter
}

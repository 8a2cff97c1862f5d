// Package events публикует события жизненного цикла записей инвентаря.
package events

import (
	"context"
	"time"

	"github.com/RoGogDBD/inventory/internal/models"
)

// Типы событий.
const (
	TypeItemRegistered    = "item.registered"
	TypeItemUpdated       = "item.updated"
	TypeItemPhotoReplaced = "item.photo_replaced"
	TypeItemDeleted       = "item.deleted"
)

// ItemEvent описывает изменение записи.
type ItemEvent struct {
	Type       string    `json:"type"`
	ItemID     int64     `json:"item_id"`
	Name       string    `json:"name"`
	PhotoPath  *string   `json:"photo_path"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewItemEvent собирает событие по текущему состоянию записи.
func NewItemEvent(eventType string, item *models.Item) ItemEvent {
	return ItemEvent{
		Type:       eventType,
		ItemID:     item.ID,
		Name:       item.Name,
		PhotoPath:  item.PhotoPath,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher отправляет события во внешнюю систему.
type Publisher interface {
	Publish(ctx context.Context, event ItemEvent) error
	Close() error
}

// NopPublisher отбрасывает события. Используется, когда брокеры не настроены.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ItemEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

// Package models содержит доменные модели приложения.
package models

// Item описывает запись инвентаря.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PhotoPath   *string `json:"photo_path"`
}

// HasPhoto сообщает, привязано ли к записи фото.
func (i *Item) HasPhoto() bool {
	return i.PhotoPath != nil && *i.PhotoPath != ""
}

// ItemView описывает запись в ответе API вместе со ссылкой на фото.
type ItemView struct {
	ID          int64   `json:"id" example:"1"`
	Name        string  `json:"name" example:"Laptop"`
	Description string  `json:"description" example:"16GB RAM"`
	PhotoPath   *string `json:"photo_path" example:"/var/cache/inventory/5d0c..."`
	PhotoURL    *string `json:"photo_url" example:"http://localhost:8080/inventory/1/photo"`
}

// UpdateItemRequest описывает тело PUT /inventory/{id}.
// Пустые и отсутствующие поля не изменяются.
type UpdateItemRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4096"`
}

// SearchResult описывает плоский ответ POST /search.
type SearchResult struct {
	ID          int64  `json:"id" example:"1"`
	Name        string `json:"name" example:"Laptop"`
	Description string `json:"description" example:"16GB RAM"`
}

// RegisterItemRequest описывает поля формы POST /register.
type RegisterItemRequest struct {
	Name        string `validate:"notblank,max=255"`
	Description string `validate:"max=4096"`
}

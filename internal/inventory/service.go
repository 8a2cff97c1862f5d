// Package inventory согласует записи инвентаря и файлы их фотографий.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/RoGogDBD/inventory/internal/events"
	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/RoGogDBD/inventory/internal/validation"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PhotoContentType отдается для любого фото независимо от загруженного формата.
const PhotoContentType = "image/jpeg"

// PhotoStore описывает файловое хранилище фотографий.
type PhotoStore interface {
	Save(r io.Reader) (string, error)
	Delete(path string) error
	Exists(path string) bool
	Open(path string) (io.ReadCloser, error)
}

// Service реализует операции над записями и их фото.
// Между хранилищем записей и файлами нет общей транзакции.
type Service struct {
	items     repository.ItemStore
	photos    PhotoStore
	publisher events.Publisher
	validate  *validator.Validate
	log       *zap.Logger
	publicURL string
	ops       metric.Int64Counter
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher задает издателя событий.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger задает логгер.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService создает Service. publicURL используется для построения photo_url.
func NewService(items repository.ItemStore, photos PhotoStore, publicURL string, opts ...Option) *Service {
	s := &Service{
		items:     items,
		photos:    photos,
		publisher: events.NopPublisher{},
		validate:  validation.New(),
		log:       zap.NewNop(),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
	for _, opt := range opts {
		opt(s)
	}

	counter, err := otel.Meter("github.com/RoGogDBD/inventory/internal/inventory").Int64Counter(
		"inventory.operations",
		metric.WithDescription("Item lifecycle operations by name and outcome"),
	)
	if err != nil {
		s.log.Warn("failed to create operations counter", zap.Error(err))
	}
	s.ops = counter
	return s
}

// Register создает запись. Фото (если есть) сохраняется до вставки записи;
// при неудачной вставке файл удаляется.
func (s *Service) Register(ctx context.Context, req models.RegisterItemRequest, photo io.Reader) (view *models.ItemView, err error) {
	defer s.record(ctx, "register", &err)

	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	name := strings.TrimSpace(req.Name)

	var photoPath *string
	if photo != nil {
		path, err := s.photos.Save(photo)
		if err != nil {
			return nil, fmt.Errorf("save photo: %w", err)
		}
		photoPath = &path
	}

	item, err := s.items.Insert(ctx, name, req.Description, photoPath)
	if err != nil {
		if photoPath != nil {
			s.deletePhoto(*photoPath)
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}

	s.publish(ctx, events.TypeItemRegistered, item)
	return s.view(item), nil
}

// List возвращает все записи по возрастанию id.
func (s *Service) List(ctx context.Context) (views []models.ItemView, err error) {
	defer s.record(ctx, "list", &err)

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	views = make([]models.ItemView, 0, len(items))
	for i := range items {
		views = append(views, *s.view(&items[i]))
	}
	return views, nil
}

// Get возвращает запись по id.
func (s *Service) Get(ctx context.Context, id int64) (view *models.ItemView, err error) {
	defer s.record(ctx, "get", &err)

	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(item), nil
}

// Update частично обновляет имя и описание. Пустые поля не меняются.
func (s *Service) Update(ctx context.Context, id int64, req models.UpdateItemRequest) (view *models.ItemView, err error) {
	defer s.record(ctx, "update", &err)

	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	item, err := s.items.Update(ctx, id, req.Name, req.Description)
	if err != nil {
		return nil, notFoundOr(err, "update item %d", id)
	}

	s.publish(ctx, events.TypeItemUpdated, item)
	return s.view(item), nil
}

// Photo открывает файл фото записи. Вызывающий закрывает результат.
func (s *Service) Photo(ctx context.Context, id int64) (rc io.ReadCloser, err error) {
	defer s.record(ctx, "photo", &err)

	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.HasPhoto() {
		return nil, fmt.Errorf("item %d has no photo: %w", id, ErrNotFound)
	}
	if !s.photos.Exists(*item.PhotoPath) {
		return nil, fmt.Errorf("photo file for item %d is missing: %w", id, ErrNotFound)
	}

	rc, err = s.photos.Open(*item.PhotoPath)
	if err != nil {
		return nil, fmt.Errorf("open photo for item %d: %w", id, err)
	}
	return rc, nil
}

// ReplacePhoto сохраняет новое фото, переключает на него запись и удаляет прежний файл.
func (s *Service) ReplacePhoto(ctx context.Context, id int64, photo io.Reader) (err error) {
	defer s.record(ctx, "replace_photo", &err)

	if photo == nil {
		return fmt.Errorf("%w: photo file is required", ErrInvalidInput)
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	path, err := s.photos.Save(photo)
	if err != nil {
		return fmt.Errorf("save photo: %w", err)
	}

	updated, err := s.items.SetPhoto(ctx, id, &path)
	if err != nil {
		s.deletePhoto(path)
		return notFoundOr(err, "set photo for item %d", id)
	}

	if current.HasPhoto() && *current.PhotoPath != path {
		if err := s.photos.Delete(*current.PhotoPath); err != nil {
			return fmt.Errorf("delete previous photo of item %d: %w", id, err)
		}
	}

	s.publish(ctx, events.TypeItemPhotoReplaced, updated)
	return nil
}

// Delete удаляет запись, затем файл её фото. Ошибка удаления файла
// возвращается, хотя запись к этому моменту уже удалена.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer s.record(ctx, "delete", &err)

	item, err := s.items.Delete(ctx, id)
	if err != nil {
		return notFoundOr(err, "delete item %d", id)
	}

	s.publish(ctx, events.TypeItemDeleted, item)

	if item.HasPhoto() {
		if err := s.photos.Delete(*item.PhotoPath); err != nil {
			return fmt.Errorf("delete photo of item %d: %w", id, err)
		}
	}
	return nil
}

// Search возвращает плоское представление записи. С includePhoto к описанию
// в ответе добавляется ссылка на фото; сохраненная запись не меняется.
func (s *Service) Search(ctx context.Context, id int64, includePhoto bool) (result *models.SearchResult, err error) {
	defer s.record(ctx, "search", &err)

	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	result = &models.SearchResult{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
	}
	if includePhoto {
		result.Description += "\n" + photoNote(s.photoURL(item))
	}
	return result, nil
}

// PhotoURL возвращает адрес фото записи id.
func (s *Service) PhotoURL(id int64) string {
	return fmt.Sprintf("%s/inventory/%d/photo", s.publicURL, id)
}

func photoNote(url *string) string {
	if url == nil {
		return "Photo link: not available"
	}
	return "Photo link: " + *url
}

func (s *Service) find(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get item %d", id)
	}
	return item, nil
}

func (s *Service) view(item *models.Item) *models.ItemView {
	return &models.ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		PhotoPath:   item.PhotoPath,
		PhotoURL:    s.photoURL(item),
	}
}

func (s *Service) photoURL(item *models.Item) *string {
	if !item.HasPhoto() {
		return nil
	}
	url := s.PhotoURL(item.ID)
	return &url
}

// deletePhoto убирает файл, который не удалось привязать к записи.
func (s *Service) deletePhoto(path string) {
	if err := s.photos.Delete(path); err != nil {
		s.log.Warn("failed to remove orphaned photo", zap.String("path", path), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType string, item *models.Item) {
	if err := s.publisher.Publish(ctx, events.NewItemEvent(eventType, item)); err != nil {
		s.log.Error("failed to publish item event",
			zap.String("type", eventType),
			zap.Int64("item_id", item.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) record(ctx context.Context, op string, errp *error) {
	if s.ops == nil {
		return
	}
	outcome := "ok"
	switch {
	case *errp == nil:
	case errors.Is(*errp, ErrNotFound):
		outcome = "not_found"
	case errors.Is(*errp, ErrInvalidInput):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func notFoundOr(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, repository.ErrItemNotFound) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func validationError(err error) error {
	field, tag, ok := validation.FirstFieldError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch tag {
	case "notblank", "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	case "max":
		return fmt.Errorf("%w: %s is too long", ErrInvalidInput, field)
	default:
		return fmt.Errorf("%w: %s is invalid", ErrInvalidInput, field)
	}
}

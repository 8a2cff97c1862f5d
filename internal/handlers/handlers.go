// Package handlers содержит HTTP-обработчики API инвентаря.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RoGogDBD/inventory/internal/inventory"
	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/RoGogDBD/inventory/docs" // регистрация OpenAPI-документа
)

// Handler связывает HTTP-запросы с inventory.Service.
type Handler struct {
	svc            *inventory.Service
	log            *zap.Logger
	maxUploadBytes int64
	staticDir      string
}

// ErrorResponse описывает тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
}

func NewHandler(svc *inventory.Service, log *zap.Logger, maxUploadBytes int64, staticDir string) *Handler {
	return &Handler{
		svc:            svc,
		log:            log,
		maxUploadBytes: maxUploadBytes,
		staticDir:      staticDir,
	}
}

// Routes регистрирует маршруты API, документации и статических форм.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.HealthHandler)

	r.Post("/register", h.RegisterHandler)
	r.Post("/search", h.SearchHandler)

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.ListHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetHandler)
			r.Put("/", h.UpdateHandler)
			r.Delete("/", h.DeleteHandler)
			r.Get("/photo", h.GetPhotoHandler)
			r.Put("/photo", h.ReplacePhotoHandler)
		})
	})

	r.Get("/docs", http.RedirectHandler("/docs/index.html", http.StatusMovedPermanently).ServeHTTP)
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	if h.staticDir != "" {
		fs := http.FileServer(http.Dir(h.staticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fs))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
		})
	}
}

// HealthHandler возвращает статус 200 OK и тело "OK" для проверки состояния сервера.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// RegisterHandler создает запись инвентаря.
//
//	@Summary		Register item
//	@Description	Creates an item from a multipart form. The photo is optional.
//	@Tags			inventory
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string	true	"Item name"
//	@Param			description	formData	string	false	"Item description"
//	@Param			photo		formData	file	false	"Item photo"
//	@Success		201			{object}	models.ItemView
//	@Failure		400			{object}	ErrorResponse
//	@Failure		413			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		h.writeFormError(w, err)
		return
	}

	photo, err := formFile(r, "photo")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid photo upload")
		return
	}
	if photo != nil {
		defer photo.Close()
	}

	req := models.RegisterItemRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	view, err := h.svc.Register(r.Context(), req, readerOrNil(photo))
	if err != nil {
		h.handleServiceError(w, err, "register item")
		return
	}

	h.writeJSON(w, http.StatusCreated, view)
}

// ListHandler возвращает все записи.
//
//	@Summary	List items
//	@Tags		inventory
//	@Produce	json
//	@Success	200	{array}		models.ItemView
//	@Failure	500	{object}	ErrorResponse
//	@Router		/inventory [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list items")
		return
	}
	h.writeJSON(w, http.StatusOK, views)
}

// GetHandler возвращает запись по id.
//
//	@Summary	Get item
//	@Tags		inventory
//	@Produce	json
//	@Param		id	path		int	true	"Item ID"
//	@Success	200	{object}	models.ItemView
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/inventory/{id} [get]
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get item")
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// UpdateHandler частично обновляет запись.
//
//	@Summary		Update item
//	@Description	Overwrites only the provided non-empty fields.
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Item ID"
//	@Param			item	body		models.UpdateItemRequest	true	"Fields to update"
//	@Success		200		{object}	models.ItemView
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/inventory/{id} [put]
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var req models.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err, "update item")
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// GetPhotoHandler отдает файл фото записи.
//
//	@Summary		Get item photo
//	@Description	Streams the stored photo. Always served as image/jpeg.
//	@Tags			photos
//	@Produce		jpeg
//	@Param			id	path		int	true	"Item ID"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	ErrorResponse
//	@Router			/inventory/{id}/photo [get]
func (h *Handler) GetPhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	photo, err := h.svc.Photo(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get photo")
		return
	}
	defer photo.Close()

	w.Header().Set("Content-Type", inventory.PhotoContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, photo); err != nil {
		h.log.Warn("failed to stream photo", zap.Int64("item_id", id), zap.Error(err))
	}
}

// ReplacePhotoHandler заменяет фото записи.
//
//	@Summary	Replace item photo
//	@Tags		photos
//	@Accept		multipart/form-data
//	@Produce	plain
//	@Param		id		path		int		true	"Item ID"
//	@Param		photo	formData	file	true	"New photo"
//	@Success	200		{string}	string	"Photo updated successfully"
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/inventory/{id}/photo [put]
func (h *Handler) ReplacePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	if err := h.parseForm(w, r); err != nil {
		h.writeFormError(w, err)
		return
	}

	photo, err := formFile(r, "photo")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid photo upload")
		return
	}
	if photo != nil {
		defer photo.Close()
	}

	if err := h.svc.ReplacePhoto(r.Context(), id, readerOrNil(photo)); err != nil {
		h.handleServiceError(w, err, "replace photo")
		return
	}
	h.writeText(w, http.StatusOK, "Photo updated successfully")
}

// DeleteHandler удаляет запись и её фото.
//
//	@Summary	Delete item
//	@Tags		inventory
//	@Produce	plain
//	@Param		id	path		int		true	"Item ID"
//	@Success	200	{string}	string	"Item deleted successfully"
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/inventory/{id} [delete]
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete item")
		return
	}
	h.writeText(w, http.StatusOK, "Item deleted successfully")
}

// SearchHandler ищет запись по id из формы.
//
//	@Summary		Search item by id
//	@Description	With includePhoto the description in the response gets a photo link note.
//	@Tags			inventory
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			id				formData	int		true	"Item ID"
//	@Param			includePhoto	formData	string	false	"Append photo link (on/true/1)"
//	@Success		200				{object}	models.SearchResult
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/search [post]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		h.writeFormError(w, err)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("id")), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	result, err := h.svc.Search(r.Context(), id, formFlag(r.FormValue("includePhoto")))
	if err != nil {
		h.handleServiceError(w, err, "search item")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

// parseForm разбирает multipart или urlencoded тело с ограничением размера.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	err := r.ParseMultipartForm(h.maxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func (h *Handler) writeFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		h.writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	h.log.Warn("invalid form body", zap.Error(err))
	h.writeError(w, http.StatusBadRequest, "invalid form body")
}

// formFile возвращает загруженный файл или nil, если поле не передано.
func formFile(r *http.Request, field string) (multipart.File, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// readerOrNil не дает типизированному nil попасть в интерфейс io.Reader.
func readerOrNil(f multipart.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}

func formFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// handleServiceError переводит ошибку сервиса в HTTP-ответ.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, inventory.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), inventory.ErrInvalidInput.Error()+": "))
	case errors.Is(err, inventory.ErrNotFound):
		h.writeError(w, http.StatusNotFound, notFoundMessage(operation))
	default:
		h.log.Error("operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func notFoundMessage(operation string) string {
	if operation == "get photo" {
		return "photo not found"
	}
	return "item not found"
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}

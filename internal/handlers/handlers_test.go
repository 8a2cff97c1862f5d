package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/RoGogDBD/inventory/internal/inventory"
	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/photos"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/RoGogDBD/inventory/internal/repository/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPublicURL = "http://inventory.test"

type testServer struct {
	router http.Handler
	photos *photos.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ps, err := photos.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	svc := inventory.NewService(repository.NewMemStorage(), ps, testPublicURL)
	return &testServer{
		router: newRouter(svc, ""),
		photos: ps,
	}
}

func newRouter(svc *inventory.Service, staticDir string) http.Handler {
	h := NewHandler(svc, zap.NewNop(), 1<<20, staticDir)
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *testServer) register(t *testing.T, name, description string, photo []byte) models.ItemView {
	t.Helper()
	rr := s.do(t, multipartRequest(t, http.MethodPost, "/register",
		map[string]string{"name": name, "description": description}, photo))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var view models.ItemView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	return view
}

func (s *testServer) getItem(t *testing.T, id string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/inventory/"+id, nil))
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		photo      []byte
		wantStatus int
		wantPhoto  bool
	}{
		{
			name:       "without photo",
			fields:     map[string]string{"name": "Laptop", "description": "16GB RAM"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "with photo",
			fields:     map[string]string{"name": "Camera"},
			photo:      []byte("jpeg"),
			wantStatus: http.StatusCreated,
			wantPhoto:  true,
		},
		{
			name:       "missing name",
			fields:     map[string]string{"description": "orphan"},
			photo:      []byte("jpeg"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank name",
			fields:     map[string]string{"name": "  "},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rr := s.do(t, multipartRequest(t, http.MethodPost, "/register", tt.fields, tt.photo))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			list := s.do(t, httptest.NewRequest(http.MethodGet, "/inventory", nil))
			var views []models.ItemView
			require.NoError(t, json.NewDecoder(list.Body).Decode(&views))

			if tt.wantStatus != http.StatusCreated {
				assert.Empty(t, views, "rejected registration must not store a record")
				entries, err := os.ReadDir(s.photos.Root())
				require.NoError(t, err)
				assert.Empty(t, entries)
				return
			}

			require.Len(t, views, 1)
			assert.Equal(t, tt.fields["name"], views[0].Name)
			assert.Equal(t, tt.fields["description"], views[0].Description)
			assert.Equal(t, tt.wantPhoto, views[0].PhotoURL != nil)
		})
	}
}

func TestRegisterURLEncodedForm(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{"name": {"Desk"}, "description": {"oak"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := s.do(t, req)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestRegisterThenGetWithoutPhoto(t *testing.T) {
	s := newTestServer(t)
	view := s.register(t, "Laptop", "16GB RAM", nil)

	rr, body := s.getItem(t, itoa(view.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Laptop", body["name"])
	assert.Equal(t, "16GB RAM", body["description"])

	photoURL, present := body["photo_url"]
	assert.True(t, present, "photo_url must be present as null")
	assert.Nil(t, photoURL)
}

func TestRegisterThenGetWithPhoto(t *testing.T) {
	s := newTestServer(t)
	view := s.register(t, "Camera", "", []byte("jpeg"))

	rr, body := s.getItem(t, itoa(view.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testPublicURL+"/inventory/"+itoa(view.ID)+"/photo", body["photo_url"])
}

func TestUpdateHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		wantDesc string
	}{
		{name: "description only", body: `{"description":"32GB RAM"}`, wantName: "Laptop", wantDesc: "32GB RAM"},
		{name: "name only", body: `{"name":"Notebook"}`, wantName: "Notebook", wantDesc: "16GB RAM"},
		{name: "empty fields are ignored", body: `{"name":"","description":""}`, wantName: "Laptop", wantDesc: "16GB RAM"},
		{name: "empty body", body: ``, wantName: "Laptop", wantDesc: "16GB RAM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			view := s.register(t, "Laptop", "16GB RAM", nil)

			req := httptest.NewRequest(http.MethodPut, "/inventory/"+itoa(view.ID), strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := s.do(t, req)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			_, body := s.getItem(t, itoa(view.ID))
			assert.Equal(t, tt.wantName, body["name"])
			assert.Equal(t, tt.wantDesc, body["description"])
		})
	}
}

func TestUpdateHandlerErrors(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/inventory/42", strings.NewReader(`{"name":"x"}`))
	assert.Equal(t, http.StatusNotFound, s.do(t, req).Code)

	view := s.register(t, "Laptop", "", nil)
	req = httptest.NewRequest(http.MethodPut, "/inventory/"+itoa(view.ID), strings.NewReader(`{"name":`))
	assert.Equal(t, http.StatusBadRequest, s.do(t, req).Code)
}

func TestPhotoLifecycle(t *testing.T) {
	s := newTestServer(t)
	view := s.register(t, "Camera", "", []byte("old bytes"))
	oldPath := *view.PhotoPath
	id := itoa(view.ID)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/inventory/"+id+"/photo", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, "old bytes", rr.Body.String())

	rr = s.do(t, multipartRequest(t, http.MethodPut, "/inventory/"+id+"/photo", nil, []byte("new bytes")))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")

	_, err := os.Stat(oldPath)
	assert.True(t, errors.Is(err, os.ErrNotExist), "old photo must be removed")

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/inventory/"+id+"/photo", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "new bytes", rr.Body.String())
}

func TestReplacePhotoErrors(t *testing.T) {
	s := newTestServer(t)
	view := s.register(t, "Camera", "", nil)

	rr := s.do(t, multipartRequest(t, http.MethodPut, "/inventory/"+itoa(view.ID)+"/photo", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, multipartRequest(t, http.MethodPut, "/inventory/999/photo", nil, []byte("x")))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetPhotoWithoutPhoto(t *testing.T) {
	s := newTestServer(t)
	view := s.register(t, "Plain", "", nil)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/inventory/"+itoa(view.ID)+"/photo", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteHandler(t *testing.T) {
	s := newTestServer(t)
	view := s.register(t, "Camera", "", []byte("bytes"))
	id := itoa(view.ID)

	rr := s.do(t, httptest.NewRequest(http.MethodDelete, "/inventory/"+id, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Item deleted successfully", rr.Body.String())

	_, err := os.Stat(*view.PhotoPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/inventory/"+id+"/photo", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, httptest.NewRequest(http.MethodDelete, "/inventory/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnknownIDReturns404(t *testing.T) {
	s := newTestServer(t)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/inventory/77", nil),
		httptest.NewRequest(http.MethodPut, "/inventory/77", strings.NewReader(`{"name":"x"}`)),
		httptest.NewRequest(http.MethodDelete, "/inventory/77", nil),
		httptest.NewRequest(http.MethodGet, "/inventory/77/photo", nil),
		multipartRequest(t, http.MethodPut, "/inventory/77/photo", nil, []byte("x")),
	}
	for _, req := range requests {
		rr := s.do(t, req)
		assert.Equal(t, http.StatusNotFound, rr.Code, "%s %s", req.Method, req.URL.Path)
	}
}

func TestInvalidIDReturns400(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/inventory/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func searchRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSearchHandler(t *testing.T) {
	s := newTestServer(t)
	view := s.register(t, "Camera", "mirrorless", []byte("jpeg"))
	id := itoa(view.ID)

	rr := s.do(t, searchRequest(url.Values{"id": {id}, "includePhoto": {"on"}}))
	require.Equal(t, http.StatusOK, rr.Code)
	var result models.SearchResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Contains(t, result.Description, "Photo link: "+testPublicURL+"/inventory/"+id+"/photo")

	rr = s.do(t, searchRequest(url.Values{"id": {id}}))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, "mirrorless", result.Description)

	_, body := s.getItem(t, id)
	assert.Equal(t, "mirrorless", body["description"], "stored description must stay unchanged")

	rr = s.do(t, searchRequest(url.Values{"id": {"404"}}))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, searchRequest(url.Values{"id": {"x"}}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, multipartRequest(t, http.MethodPost, "/register",
		map[string]string{"name": "Huge"}, bytes.Repeat([]byte("x"), 2<<20)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestStorageErrorReturns500(t *testing.T) {
	store := &mocks.ItemStoreMock{
		ListFunc: func(context.Context) ([]models.Item, error) {
			return nil, errors.New("connection refused")
		},
		GetFunc: func(context.Context, int64) (*models.Item, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := inventory.NewService(store, &mocks.PhotoStoreMock{}, testPublicURL)
	router := newRouter(svc, "")

	for _, target := range []string{"/inventory", "/inventory/1"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "internal server error", body.Error, "backend details must not leak")
	}
}

func TestStaticForms(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<form></form>"), 0o600))

	ps, err := photos.New(t.TempDir())
	require.NoError(t, err)
	router := newRouter(inventory.NewService(repository.NewMemStorage(), ps, testPublicURL), dir)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), "<form>")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/index.html", nil))
	assert.NotEqual(t, http.StatusNotFound, rr.Code)
}

func TestDocsServed(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/inventory/{id}/photo")
}

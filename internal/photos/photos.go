// Package photos хранит загруженные фотографии в файлах под каталогом кеша.
package photos

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrOutsideRoot возвращается для путей вне каталога хранилища.
var ErrOutsideRoot = errors.New("photo path outside cache directory")

// Store сохраняет фото под корневым каталогом. Имя файла генерируется
// случайно и не содержит расширения.
type Store struct {
	root string
}

// New создает каталог root (если его нет) и возвращает хранилище с абсолютным корнем.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %q: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// Root возвращает абсолютный путь каталога хранилища.
func (s *Store) Root() string {
	return s.root
}

// Save записывает содержимое r в новый файл и возвращает его абсолютный путь.
func (s *Store) Save(r io.Reader) (string, error) {
	path := filepath.Join(s.root, uuid.NewString())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write photo file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close photo file: %w", err)
	}
	return path, nil
}

// Delete удаляет файл. Пустой путь и уже отсутствующий файл не считаются ошибкой.
func (s *Store) Delete(path string) error {
	if path == "" {
		return nil
	}
	if !s.contains(path) {
		return fmt.Errorf("delete %q: %w", path, ErrOutsideRoot)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete photo file: %w", err)
	}
	return nil
}

// Exists сообщает, существует ли обычный файл по пути path.
func (s *Store) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Open открывает файл фото для чтения.
func (s *Store) Open(path string) (io.ReadCloser, error) {
	if !s.contains(path) {
		return nil, fmt.Errorf("open %q: %w", path, ErrOutsideRoot)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo file: %w", err)
	}
	return f, nil
}

func (s *Store) contains(path string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

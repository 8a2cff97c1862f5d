package mocks

import (
	"errors"
	"io"
)

type PhotoStoreMock struct {
	SaveFunc   func(r io.Reader) (string, error)
	DeleteFunc func(path string) error
	ExistsFunc func(path string) bool
	OpenFunc   func(path string) (io.ReadCloser, error)

	SaveCalls    int
	DeleteCalls  int
	DeletedPaths []string
}

func (m *PhotoStoreMock) Save(r io.Reader) (string, error) {
	m.SaveCalls++
	if m.SaveFunc == nil {
		return "", errors.New("SaveFunc not set")
	}
	return m.SaveFunc(r)
}

func (m *PhotoStoreMock) Delete(path string) error {
	m.DeleteCalls++
	m.DeletedPaths = append(m.DeletedPaths, path)
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(path)
}

func (m *PhotoStoreMock) Exists(path string) bool {
	if m.ExistsFunc == nil {
		return false
	}
	return m.ExistsFunc(path)
}

func (m *PhotoStoreMock) Open(path string) (io.ReadCloser, error) {
	if m.OpenFunc == nil {
		return nil, errors.New("OpenFunc not set")
	}
	return m.OpenFunc(path)
}

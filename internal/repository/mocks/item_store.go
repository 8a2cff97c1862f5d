package mocks

import (
	"context"
	"errors"

	"github.com/RoGogDBD/inventory/internal/models"
)

type ItemStoreMock struct {
	InsertFunc   func(ctx context.Context, name, description string, photoPath *string) (*models.Item, error)
	ListFunc     func(ctx context.Context) ([]models.Item, error)
	GetFunc      func(ctx context.Context, id int64) (*models.Item, error)
	UpdateFunc   func(ctx context.Context, id int64, name, description *string) (*models.Item, error)
	SetPhotoFunc func(ctx context.Context, id int64, photoPath *string) (*models.Item, error)
	DeleteFunc   func(ctx context.Context, id int64) (*models.Item, error)

	InsertCalls   int
	ListCalls     int
	GetCalls      int
	UpdateCalls   int
	SetPhotoCalls int
	DeleteCalls   int
}

func (m *ItemStoreMock) Insert(ctx context.Context, name, description string, photoPath *string) (*models.Item, error) {
	m.InsertCalls++
	if m.InsertFunc == nil {
		return nil, errors.New("InsertFunc not set")
	}
	return m.InsertFunc(ctx, name, description, photoPath)
}

func (m *ItemStoreMock) List(ctx context.Context) ([]models.Item, error) {
	m.ListCalls++
	if m.ListFunc == nil {
		return nil, errors.New("ListFunc not set")
	}
	return m.ListFunc(ctx)
}

func (m *ItemStoreMock) Get(ctx context.Context, id int64) (*models.Item, error) {
	m.GetCalls++
	if m.GetFunc == nil {
		return nil, errors.New("GetFunc not set")
	}
	return m.GetFunc(ctx, id)
}

func (m *ItemStoreMock) Update(ctx context.Context, id int64, name, description *string) (*models.Item, error) {
	m.UpdateCalls++
	if m.UpdateFunc == nil {
		return nil, errors.New("UpdateFunc not set")
	}
	return m.UpdateFunc(ctx, id, name, description)
}

func (m *ItemStoreMock) SetPhoto(ctx context.Context, id int64, photoPath *string) (*models.Item, error) {
	m.SetPhotoCalls++
	if m.SetPhotoFunc == nil {
		return nil, errors.New("SetPhotoFunc not set")
	}
	return m.SetPhotoFunc(ctx, id, photoPath)
}

func (m *ItemStoreMock) Delete(ctx context.Context, id int64) (*models.Item, error) {
	m.DeleteCalls++
	if m.DeleteFunc == nil {
		return nil, errors.New("DeleteFunc not set")
	}
	return m.DeleteFunc(ctx, id)
}

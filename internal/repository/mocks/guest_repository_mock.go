package mocks

import (
	"context"

	"wedding-guest-list/internal/model"

	"github.com/stretchr/testify/mock"
)

type GuestRepositoryMock struct {
	mock.Mock
}

func NewGuestRepositoryMock() *GuestRepositoryMock {
	return &GuestRepositoryMock{}
}

func (m *GuestRepositoryMock) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *GuestRepositoryMock) Create(ctx context.Context, input model.GuestInput) (int64, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(int64), args.Error(1)
}

func (m *GuestRepositoryMock) List(ctx context.Context) ([]*model.Guest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Guest), args.Error(1)
}

func (m *GuestRepositoryMock) FindByID(ctx context.Context, id int64) (*model.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestRepositoryMock) Update(ctx context.Context, id int64, input model.GuestInput) (bool, error) {
	args := m.Called(ctx, id, input)
	return args.Bool(0), args.Error(1)
}

func (m *GuestRepositoryMock) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *GuestRepositoryMock) Statistics(ctx context.Context) (model.Statistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Statistics), args.Error(1)
}

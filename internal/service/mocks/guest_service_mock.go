package mocks

import (
	"context"

	"wedding-guest-list/internal/model"

	"github.com/stretchr/testify/mock"
)

type GuestServiceMock struct {
	mock.Mock
}

func NewGuestServiceMock() *GuestServiceMock {
	return &GuestServiceMock{}
}

func (m *GuestServiceMock) List(ctx context.Context) ([]*model.Guest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Get(ctx context.Context, id int64) (*model.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Create(ctx context.Context, input model.GuestInput) (*model.Guest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Update(ctx context.Context, id int64, input model.GuestInput) (*model.Guest, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Delete(ctx context.Context, id int64) (*model.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Statistics(ctx context.Context) (model.Statistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Statistics), args.Error(1)
}

func (m *GuestServiceMock) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dashboard), args.Error(1)
}

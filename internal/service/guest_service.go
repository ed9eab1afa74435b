package service

import (
	"context"

	"wedding-guest-list/internal/model"
	"wedding-guest-list/internal/repository"
	apperrors "wedding-guest-list/pkg/app_errors"
	"wedding-guest-list/pkg/logger"

	"go.uber.org/zap"
)

type GuestService interface {
	List(ctx context.Context) ([]*model.Guest, error)
	Get(ctx context.Context, id int64) (*model.Guest, error)
	Create(ctx context.Context, input model.GuestInput) (*model.Guest, error)
	// Update returns ErrGuestNotFound when the guest does not exist.
	Update(ctx context.Context, id int64, input model.GuestInput) (*model.Guest, error)
	// Delete returns the removed guest so callers can name it.
	Delete(ctx context.Context, id int64) (*model.Guest, error)
	Statistics(ctx context.Context) (model.Statistics, error)
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

type GuestServiceImpl struct {
	repo repository.GuestRepository
	log  *zap.Logger
}

func NewGuestService(repo repository.GuestRepository) GuestService {
	return &GuestServiceImpl{
		repo: repo,
		log:  logger.WithComponent("service"),
	}
}

func (s *GuestServiceImpl) List(ctx context.Context) ([]*model.Guest, error) {
	return s.repo.List(ctx)
}

func (s *GuestServiceImpl) Get(ctx context.Context, id int64) (*model.Guest, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *GuestServiceImpl) Create(ctx context.Context, input model.GuestInput) (*model.Guest, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.log.Info("guest added", zap.Int64("guest_id", id), zap.String("name", input.Name), zap.Int("count", input.Count))

	return s.readBack(ctx, id, input), nil
}

func (s *GuestServiceImpl) Update(ctx context.Context, id int64, input model.GuestInput) (*model.Guest, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	found, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.ErrGuestNotFound
	}
	s.log.Info("guest updated", zap.Int64("guest_id", id))

	return s.readBack(ctx, id, input), nil
}

// readBack loads a guest that was just committed. The write already
// succeeded, so a failed read falls back to the input without timestamps.
func (s *GuestServiceImpl) readBack(ctx context.Context, id int64, input model.GuestInput) *model.Guest {
	guest, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return guest
	}
	s.log.Warn("failed to read back committed guest", zap.Int64("guest_id", id), zap.Error(err))
	return &model.Guest{
		ID:         id,
		Name:       input.Name,
		Count:      input.Count,
		Side:       input.Side,
		Attendance: input.Attendance,
	}
}

func (s *GuestServiceImpl) Delete(ctx context.Context, id int64) (*model.Guest, error) {
	guest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	// removed by someone else between the lookup and the delete
	if !found {
		return nil, apperrors.ErrGuestNotFound
	}
	s.log.Info("guest deleted", zap.Int64("guest_id", id), zap.String("name", guest.Name))

	return guest, nil
}

func (s *GuestServiceImpl) Statistics(ctx context.Context) (model.Statistics, error) {
	return s.repo.Statistics(ctx)
}

func (s *GuestServiceImpl) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	guests, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Dashboard{Guests: guests, Stats: stats}, nil
}

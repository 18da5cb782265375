package service

import (
	"context"
	"fmt"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

type UserService struct {
	repository UserRepository
}

func NewUserService(repository UserRepository) *UserService {
	return &UserService{repository: repository}
}

// EnsureUser creates the user or refreshes its profile and returns the stored
// record, last read pointer included.
func (s *UserService) EnsureUser(ctx context.Context, user *entities.User) (*entities.User, error) {
	if _, err := s.repository.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	stored, err := s.repository.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return stored, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	return s.repository.GetByID(ctx, userID)
}

func (s *UserService) MarkWelcomed(ctx context.Context, userID int64) error {
	return s.repository.MarkWelcomed(ctx, userID)
}

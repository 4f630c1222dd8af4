package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
)

const defaultPageLimit = int32(10)

type CustomerDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type listUsersRequest interface {
	GetSearch() string
	GetPage() int32
	GetLimit() int32
}

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByMobile(ctx context.Context, mobile string) (*entity.User, error)
	List(ctx context.Context, filter repository.UserFilter) ([]*entity.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type UserService struct {
	userRepo userRepository
}

func NewUserService(userRepo userRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// FindOrCreate resolves a customer by email. Existing rows are refreshed with
// any non-empty details; phone and mobile always move together.
func (s *UserService) FindOrCreate(ctx context.Context, details CustomerDetails) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(details.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	details.Email = email

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.refresh(ctx, existing, details)
	}

	now := time.Now().UTC()
	phone := strings.TrimSpace(details.Phone)
	user := &entity.User{
		Name:      strings.TrimSpace(details.Name),
		Email:     email,
		Phone:     phone,
		Mobile:    phone,
		Address:   strings.TrimSpace(details.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, err
		}

		// lost the insert race; the winner's row is updated instead
		winner, findErr := s.userRepo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, findErr
		}
		if winner == nil {
			return nil, err
		}
		return s.refresh(ctx, winner, details)
	}

	return user, nil
}

func (s *UserService) refresh(ctx context.Context, user *entity.User, details CustomerDetails) (*entity.User, error) {
	updated := *user
	if name := strings.TrimSpace(details.Name); name != "" {
		updated.Name = name
	}
	if phone := strings.TrimSpace(details.Phone); phone != "" {
		updated.Phone = phone
		updated.Mobile = phone
	}
	if address := strings.TrimSpace(details.Address); address != "" {
		updated.Address = address
	}
	if updated == *user {
		return user, nil
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) LoginByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, fmt.Errorf("%w: mobile is required", ErrInvalidRequest)
	}

	user, err := s.userRepo.FindByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, req listUsersRequest) ([]*entity.User, int64, error) {
	return s.userRepo.List(ctx, repository.UserFilter{
		Search: strings.TrimSpace(req.GetSearch()),
		Page:   normalizePage(req.GetPage()),
		Limit:  normalizeLimit(req.GetLimit()),
	})
}

func normalizePage(page int32) int32 {
	if page <= 0 {
		return 1
	}
	return page
}

func normalizeLimit(limit int32) int32 {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
	"github.com/vibast-solutions/ms-go-receipts/app/session"
	"golang.org/x/crypto/bcrypt"
)

const recentPaymentsLimit = int32(5)

type loginRequest interface {
	GetIdentifier() string
	GetPassword() string
}

type adminRepository interface {
	Create(ctx context.Context, admin *entity.Admin) error
	FindByIdentifier(ctx context.Context, identifier string) (*entity.Admin, error)
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

type sessionStore interface {
	Create(ctx context.Context, sess *session.AdminSession) (string, error)
	Get(ctx context.Context, token string) (*session.AdminSession, error)
	Delete(ctx context.Context, token string) error
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type MonthlyStat struct {
	Count   int64
	Revenue decimal.Decimal
}

type DashboardStats struct {
	TotalPayments      int64
	SuccessfulPayments int64
	TotalReceipts      int64
	TotalUsers         int64
	TotalRevenue       decimal.Decimal
	SuccessRate        float64
	RecentPayments     []*entity.Payment
	MonthlyStats       map[string]MonthlyStat
}

type AdminService struct {
	adminRepo   adminRepository
	sessions    sessionStore
	paymentRepo paymentRepository
	receipts    counter
	users       counter
	now         func() time.Time
}

func NewAdminService(
	adminRepo adminRepository,
	sessions sessionStore,
	paymentRepo paymentRepository,
	receipts counter,
	users counter,
) *AdminService {
	return &AdminService{
		adminRepo:   adminRepo,
		sessions:    sessions,
		paymentRepo: paymentRepo,
		receipts:    receipts,
		users:       users,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Login never tells the caller which part of the credentials was wrong.
func (s *AdminService) Login(ctx context.Context, req loginRequest) (string, *entity.Admin, error) {
	identifier := strings.TrimSpace(req.GetIdentifier())
	password := req.GetPassword()
	if identifier == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return "", nil, err
	}
	if admin == nil || !admin.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	token, err := s.sessions.Create(ctx, &session.AdminSession{
		AdminID:   admin.ID,
		Username:  admin.Username,
		Role:      admin.Role,
		CreatedAt: now,
	})
	if err != nil {
		return "", nil, err
	}
	_ = s.adminRepo.TouchLastLogin(ctx, admin.ID, now)
	admin.LastLoginAt = &now

	return token, admin, nil
}

func (s *AdminService) Authenticate(ctx context.Context, token string) (*session.AdminSession, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return sess, nil
}

func (s *AdminService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *AdminService) CreateAdmin(ctx context.Context, username, email, password, role string) (*entity.Admin, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: username, email and a password of at least 8 characters are required", ErrInvalidRequest)
	}
	if strings.TrimSpace(role) == "" {
		role = "admin"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	admin := &entity.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         strings.TrimSpace(role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrAdminAlreadyExists) {
			return nil, fmt.Errorf("%w: admin already exists", ErrConflict)
		}
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	paymentStats, err := s.paymentRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	totalReceipts, err := s.receipts.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.paymentRepo.List(ctx, repository.PaymentFilter{Page: 1, Limit: recentPaymentsLimit})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalPayments:      paymentStats.Total,
		SuccessfulPayments: paymentStats.Completed,
		TotalReceipts:      totalReceipts,
		TotalUsers:         totalUsers,
		TotalRevenue:       paymentStats.Revenue,
		RecentPayments:     recent,
		MonthlyStats:       make(map[string]MonthlyStat, len(paymentStats.Monthly)),
	}
	if paymentStats.Total > 0 {
		stats.SuccessRate = float64(paymentStats.Completed) * 100 / float64(paymentStats.Total)
	}
	for _, m := range paymentStats.Monthly {
		stats.MonthlyStats[strconv.Itoa(m.Year)+"-"+strconv.Itoa(m.Month)] = MonthlyStat{Count: m.Count, Revenue: m.Revenue}
	}

	return stats, nil
}

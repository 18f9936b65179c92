package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
)

// AccountService implements account.Service
type AccountService struct {
	repo   account.Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(repo account.Repository, log *logger.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// Create creates a new free-tier account
func (s *AccountService) Create(ctx context.Context) (*account.Account, error) {
	a := account.New(uuid.NewString(), s.now().UTC().Truncate(time.Second))

	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create account")
		return nil, err
	}

	s.logger.With("account_id", a.ID).Info("Account created")

	return a, nil
}

// Get retrieves an account as stored
func (s *AccountService) Get(ctx context.Context, id string) (*account.Account, error) {
	return s.repo.Get(ctx, id)
}

var _ account.Service = (*AccountService)(nil)

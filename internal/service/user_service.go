package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"blupr/internal/domain"
	"blupr/internal/repository"
)

const minPasswordLength = 8

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService registra y autentica cuentas. El ID de la cuenta es la identidad del encuestado.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	limiter LoginLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, limiter LoginLimiter) *UserService {
	if limiter == nil {
		limiter = NewMemoryLoginLimiter(10*time.Minute, 5)
	}
	return &UserService{
		logger:  logger,
		users:   users,
		limiter: limiter,
	}
}

type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrServiceNotConfigured
	}
	email := normalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		return domain.User{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	if s.logger != nil {
		s.logger.Info("user registered", zap.String("user_id", user.ID))
	}
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrServiceNotConfigured
	}
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, email) {
		return domain.User{}, ErrRateLimited
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get devuelve la cuenta por ID, sin el hash de la password.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrServiceNotConfigured
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

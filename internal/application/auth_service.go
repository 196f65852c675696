package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-catalog-api/pkg/mailer/templates"
)

var authStats = expvar.NewMap("auth")

// EventPublisher is satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthService struct {
	Users  repo.UserRepository
	Hasher *helpers.PasswordHasher
	JWT    *helpers.JWTManager
	Events EventPublisher // optional
	Logger *logrus.Logger

	AppName                  string
	CaseInsensitiveUsernames bool

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repo.UserRepository, hasher *helpers.PasswordHasher, jwt *helpers.JWTManager, events EventPublisher, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:  users,
		Hasher: hasher,
		JWT:    jwt,
		Events: events,
		Logger: logger,
	}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	UserID    string
	Username  string
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) normalizeUsername(username string) string {
	username = strings.TrimSpace(username)
	if s.CaseInsensitiveUsernames {
		username = strings.ToLower(username)
	}
	return username
}

// bcrypt only hashes the first 72 bytes and rejects longer input.
const maxPasswordBytes = 72

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a user. Nothing is persisted unless every step succeeds.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	username := s.normalizeUsername(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" || len(in.Password) > maxPasswordBytes {
		return nil, ErrInvalidInput
	}

	if _, err := s.Users.FindByUsername(ctx, username); err == nil {
		authStats.Add("signup_conflict", 1)
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashFailed, err)
	}

	u := &entity.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.Users.Insert(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			authStats.Add("signup_conflict", 1)
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	authStats.Add("signup_ok", 1)

	s.publishWelcome(ctx, u)
	return u, nil
}

// Login never reveals whether the username exists: both branches cost one
// bcrypt comparison and return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.Users.FindByUsername(ctx, s.normalizeUsername(username))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		s.Hasher.Verify(s.dummy(), password)
		authStats.Add("login_failed", 1)
		return nil, ErrInvalidCredentials
	}
	if !s.Hasher.Verify(u.PasswordHash, password) {
		authStats.Add("login_failed", 1)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.Issue(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		}
		return nil, err
	}
	authStats.Add("login_ok", 1)
	return &LoginResult{UserID: u.ID, Username: u.Username, Token: token, ExpiresAt: exp}, nil
}

// Authorize gates protected operations on a bearer token.
func (s *AuthService) Authorize(_ context.Context, token string) (*helpers.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenMissing
	}
	claims, err := s.JWT.Verify(token)
	if err != nil {
		authStats.Add("token_rejected", 1)
		if s.Logger != nil {
			s.Logger.WithError(err).Debug("token rejected")
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash("timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *AuthService) publishWelcome(ctx context.Context, u *entity.User) {
	if s.Events == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data: mailtpl.WelcomeData{
			AppName:    s.AppName,
			Username:   u.Username,
			Email:      u.Email,
			SignedUpAt: u.CreatedAt,
		}.ToMap(),
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Events.PublishJSON(c, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to publish welcome email")
	}
}

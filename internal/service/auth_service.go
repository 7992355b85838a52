package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/auth"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email sudah terdaftar")
	ErrInvalidCredentials = errors.New("email atau kata sandi salah")
	ErrUserNotFound       = errors.New("pengguna tidak ditemukan")
)

// SessionCloser forgets per-login state when a user logs out.
type SessionCloser interface {
	Drop(id string)
}

type AuthService struct {
	users     repository.UserStore
	revoker   auth.Revoker
	sessions  SessionCloser
	jwtSecret string
	ttl       time.Duration
	log       *zap.Logger
}

func NewAuthService(users repository.UserStore, revoker auth.Revoker, sessions SessionCloser, jwtSecret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{users: users, revoker: revoker, sessions: sessions, jwtSecret: jwtSecret, ttl: ttl, log: log}
}

type AuthResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      models.UserResponse `json:"user"`
}

// Register creates a resident account and logs it in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	user, err := s.create(ctx, email, password, name, models.RoleWarga)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	s.log.Info("login", zap.String("user", user.ID), zap.String("role", user.Role))
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

// Logout revokes the token for the rest of its lifetime and drops the
// review session tied to it.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.sessions != nil {
		s.sessions.Drop(claims.SessionID())
	}
	return s.revoker.Revoke(ctx, claims.SessionID(), claims.TTL(time.Now()))
}

// SeedAdmin creates the staff account unless the email is already taken.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.create(ctx, email, password, "Admin Desa", models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) create(ctx context.Context, email, password, name, role string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	id, err := s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, user.Role, s.ttl)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user.ToResponse()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

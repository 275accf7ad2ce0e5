package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

const (
	MinRefreshTTL = 7 * 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour

	minPasswordLen = 8
	minSignupAge   = 18
)

var ErrDependenciesNil = errors.New("auth dependencies are not configured")

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (pgrepo.CredentialRecord, error)
	Create(ctx context.Context, rec pgrepo.NewUserRecord, now time.Time) (int64, error)
}

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord, refreshToken string) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (SessionRecord, error)
	RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Gender    enums.Gender
	Birthdate time.Time
	City      string
}

type Service struct {
	jwt        *JWTManager
	users      UserStore
	sessions   SessionStore
	refreshTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, users UserStore, sessions SessionStore, refreshTTL time.Duration) *Service {
	if refreshTTL < MinRefreshTTL {
		refreshTTL = MinRefreshTTL
	}
	if refreshTTL > MaxRefreshTTL {
		refreshTTL = MaxRefreshTTL
	}

	return &Service{
		jwt:        jwtManager,
		users:      users,
		sessions:   sessions,
		refreshTTL: refreshTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	if s.users == nil || s.sessions == nil || s.jwt == nil {
		return AuthResult{}, ErrDependenciesNil
	}

	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || len(input.Password) < minPasswordLen {
		return AuthResult{}, ErrInvalidInput
	}
	if !input.Gender.Valid() {
		return AuthResult{}, ErrInvalidInput
	}
	if input.Birthdate.IsZero() || ageAt(input.Birthdate, s.now()) < minSignupAge {
		return AuthResult{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.Create(ctx, pgrepo.NewUserRecord{
		Username:     input.Username,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Gender:       input.Gender,
		Birthdate:    input.Birthdate,
		City:         strings.TrimSpace(input.City),
	}, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrUsernameTaken) {
			return AuthResult{}, ErrUsernameTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueForUser(ctx, userID, input.Username, string(enums.RoleUser))
}

func (s *Service) Login(ctx context.Context, username, password string) (AuthResult, error) {
	if s.users == nil || s.sessions == nil || s.jwt == nil {
		return AuthResult{}, ErrDependenciesNil
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	rec, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user by username: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueForUser(ctx, rec.User.ID, rec.User.Username, rec.Role)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if s.sessions == nil || s.jwt == nil {
		return AuthResult{}, ErrDependenciesNil
	}
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get refresh token session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		return AuthResult{}, ErrUnauthorized
	}

	newRefreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	newExpiresAt := s.now().Add(s.refreshTTL)
	if err := s.sessions.RotateRefresh(ctx, session.SID, refreshToken, newRefreshToken, newExpiresAt); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(session.UserID, session.SID, session.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newRefreshToken,
		AccessExpires: accessExpires,
		Me: Me{
			ID:   session.UserID,
			Role: session.Role,
		},
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if s.sessions == nil {
		return ErrDependenciesNil
	}
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	if s.sessions == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	if s.sessions == nil || s.jwt == nil {
		return AccessClaims{}, ErrDependenciesNil
	}

	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID || session.Role != claims.Role {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

func (s *Service) issueForUser(ctx context.Context, userID int64, username, role string) (AuthResult, error) {
	refreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	session := SessionRecord{
		SID:       NewSessionID(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, session, refreshToken); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(userID, session.SID, role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
		Me: Me{
			ID:       userID,
			Username: username,
			Role:     role,
		},
	}, nil
}

func ageAt(birthdate, at time.Time) int {
	years := at.Year() - birthdate.Year()
	anniversary := birthdate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

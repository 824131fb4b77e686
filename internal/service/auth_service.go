package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudyy74/teams-api/internal/auth"
	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrTokenNotValid      = errors.New("token is invalid or expired")
	ErrAuthUserNotFound   = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
)

type AuthUserRepository interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
}

type TokenIssuer interface {
	IssuePair(userID int64) (models.TokenPair, error)
	Issue(userID int64, tokenType string) (string, *auth.Claims, error)
	Parse(token, wantType string) (*auth.Claims, error)
}

type Denylist interface {
	// Claim denylists jti and reports whether this call added it.
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)
	Contains(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	tx            txManager
	users         AuthUserRepository
	teams         TeamChecker
	hasher        PasswordHasher
	tokens        TokenIssuer
	denylist      Denylist
	rotateRefresh bool
	now           func() time.Time
	log           *slog.Logger
}

type AuthOption func(*AuthService)

// WithRefreshRotation makes Refresh hand out a new refresh token and revoke
// the presented one.
func WithRefreshRotation(enabled bool) AuthOption {
	return func(s *AuthService) {
		s.rotateRefresh = enabled
	}
}

func NewAuthService(
	tx txManager,
	users AuthUserRepository,
	teams TeamChecker,
	hasher PasswordHasher,
	tokens TokenIssuer,
	denylist Denylist,
	log *slog.Logger,
	opts ...AuthOption,
) (*AuthService, error) {
	if tx == nil {
		return nil, errors.New("tx manager cannot be nil")
	}
	if users == nil {
		return nil, errors.New("users repository cannot be nil")
	}
	if teams == nil {
		return nil, errors.New("teams repository cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("password hasher cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("token issuer cannot be nil")
	}
	if denylist == nil {
		return nil, errors.New("denylist cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	s := &AuthService{
		tx:       tx,
		users:    users,
		teams:    teams,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if req == nil {
		return nil, emptyBody()
	}
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TeamID:    req.Team,
		IsActive:  true,
	}, req.Password)
	if err != nil {
		return nil, err
	}
	s.log.Info("user signed up", slog.Int64("user_id", user.ID))
	return user, nil
}

// CreateSuperuser registers an active staff account with every permission.
func (s *AuthService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	req := &models.SignupRequest{Email: normalizeEmail(email), Password: password}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	user, err := s.createUser(ctx, &models.User{
		Email:       req.Email,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}, password)
	if err != nil {
		return nil, err
	}
	s.log.Info("superuser created", slog.Int64("user_id", user.ID))
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, u *models.User, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, fieldError("password", "Ensure this field has no more than 72 bytes.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.PasswordHash = hash

	var created *models.User
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		if u.TeamID != nil {
			exists, err := s.teams.ExistsTeam(ctx, *u.TeamID)
			if err != nil {
				return fmt.Errorf("check team: %w", err)
			}
			if !exists {
				return teamDoesNotExist(*u.TeamID)
			}
		}
		c, err := s.users.CreateUser(ctx, u)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrEmailTaken):
				return fieldError("email", "user with this email already exists.")
			case errors.Is(err, storage.ErrTeamNotFound):
				return teamDoesNotExist(*u.TeamID)
			default:
				return fmt.Errorf("insert user: %w", err)
			}
		}
		created = c
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		s.log.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, req *models.TokenObtainRequest) (*models.TokenPair, error) {
	if req == nil {
		return nil, emptyBody()
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.hasher.Compare("", req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !s.hasher.Compare(user.PasswordHash, req.Password) || !user.IsActive {
		s.log.Debug("rejected login", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.users.SetLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, req *models.TokenRefreshRequest) (*models.TokenRefreshResponse, error) {
	if req == nil {
		return nil, emptyBody()
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	claims, err := s.tokens.Parse(req.Refresh, auth.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenNotValid, err)
	}
	revoked, err := s.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token is denylisted", ErrTokenNotValid)
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if s.rotateRefresh {
		claimed, err := s.denylist.Claim(ctx, claims.ID, claims.ExpiresAt.Time)
		if err != nil {
			return nil, fmt.Errorf("refresh: %w", err)
		}
		if !claimed {
			return nil, fmt.Errorf("%w: token already used", ErrTokenNotValid)
		}
	}

	access, _, err := s.tokens.Issue(user.ID, auth.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	resp := &models.TokenRefreshResponse{Access: access}
	if !s.rotateRefresh {
		return resp, nil
	}

	refresh, _, err := s.tokens.Issue(user.ID, auth.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	resp.Refresh = refresh
	return resp, nil
}

// Authenticate resolves an access token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token, auth.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenNotValid, err)
	}
	return s.activeUser(ctx, claims.UserID)
}

func (s *AuthService) activeUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrAuthUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

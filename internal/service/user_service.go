package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudyy74/teams-api/internal/auth"
	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/internal/storage"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter, limit, offset int) ([]*models.User, error)
	CountUsers(ctx context.Context, filter models.UserFilter) (int64, error)
	UpdateUser(ctx context.Context, u *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type UserService struct {
	tx     txManager
	users  UserRepository
	teams  TeamChecker
	hasher PasswordHasher
	log    *slog.Logger
}

func NewUserService(tx txManager, users UserRepository, teams TeamChecker, hasher PasswordHasher, log *slog.Logger) (*UserService, error) {
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
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &UserService{
		tx:     tx,
		users:  users,
		teams:  teams,
		hasher: hasher,
		log:    log,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("get user: %w", ErrUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter, page models.PageRequest) (*models.Listing[*models.User], error) {
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)

	total, err := s.users.CountUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if err := checkPageInRange(page, total); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx, filter, page.PageSize, pageOffset(page))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &models.Listing[*models.User]{Items: users, Total: total, Page: page}, nil
}

// UpdateUser applies a PUT (partial=false) or PATCH (partial=true) body.
// A full update still leaves omitted optional fields untouched.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *models.UserUpdateRequest, partial bool) (*models.User, error) {
	if req == nil {
		return nil, emptyBody()
	}
	if err := s.prepareUpdate(req, partial); err != nil {
		return nil, err
	}

	var hash string
	if req.Password != nil {
		h, err := s.hasher.Hash(*req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooLong) {
				return nil, fieldError("password", "Ensure this field has no more than 72 bytes.")
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
		hash = h
	}

	var updated *models.User
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		u, err := s.users.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}
		applyUserUpdate(u, req, hash)

		if req.Team.Set && u.TeamID != nil {
			exists, err := s.teams.ExistsTeam(ctx, *u.TeamID)
			if err != nil {
				return fmt.Errorf("check team: %w", err)
			}
			if !exists {
				return teamDoesNotExist(*u.TeamID)
			}
		}

		saved, err := s.users.UpdateUser(ctx, u)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrUserNotFound):
				return ErrUserNotFound
			case errors.Is(err, storage.ErrEmailTaken):
				return fieldError("email", "user with this email already exists.")
			case errors.Is(err, storage.ErrTeamNotFound):
				return teamDoesNotExist(*u.TeamID)
			default:
				return fmt.Errorf("save user: %w", err)
			}
		}
		updated = saved
		return nil
	})
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return nil, verr
		case errors.Is(err, ErrUserNotFound):
			return nil, fmt.Errorf("update user: %w", ErrUserNotFound)
		default:
			s.log.Error("failed to update user", slog.Int64("user_id", id), slog.Any("error", err))
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	s.log.Info("user updated", slog.Int64("user_id", id), slog.Bool("partial", partial))
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("delete user: %w", ErrUserNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

func (s *UserService) prepareUpdate(req *models.UserUpdateRequest, partial bool) error {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		req.FirstName = &name
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		req.LastName = &name
	}

	verr := &ValidationError{}
	if err := validateStruct(req); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}
	switch {
	case req.Email == nil && !partial:
		verr.add("email", msgRequired)
	case req.Email != nil && *req.Email == "":
		verr.add("email", msgBlank)
	}
	if req.Password != nil && *req.Password == "" {
		verr.add("password", msgBlank)
	}
	if req.Team.Set && req.Team.Value != nil && *req.Team.Value <= 0 {
		verr.add("team", "Ensure this value is greater than 0.")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func applyUserUpdate(u *models.User, req *models.UserUpdateRequest, passwordHash string) {
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Team.Set {
		u.TeamID = req.Team.Value
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsStaff != nil {
		u.IsStaff = *req.IsStaff
	}
	if passwordHash != "" {
		u.PasswordHash = passwordHash
	}
}

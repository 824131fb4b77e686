package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/internal/storage"
)

var (
	ErrTeamNotFound = errors.New("team not found")
)

type TeamRepository interface {
	CreateTeam(ctx context.Context, name string) (*models.Team, error)
	GetTeam(ctx context.Context, id int64) (*models.Team, error)
	ListTeams(ctx context.Context, limit, offset int) ([]*models.Team, error)
	CountTeams(ctx context.Context) (int64, error)
	UpdateTeam(ctx context.Context, team *models.Team) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int64) error
}

type TeamService struct {
	teams TeamRepository
	log   *slog.Logger
}

func NewTeamService(teams TeamRepository, log *slog.Logger) (*TeamService, error) {
	if teams == nil {
		return nil, errors.New("teams repository cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &TeamService{
		teams: teams,
		log:   log,
	}, nil
}

func (s *TeamService) CreateTeam(ctx context.Context, req *models.TeamRequest) (*models.Team, error) {
	if err := prepareTeam(req); err != nil {
		return nil, err
	}

	team, err := s.teams.CreateTeam(ctx, req.Name)
	if err != nil {
		if errors.Is(err, storage.ErrTeamExists) {
			return nil, teamNameTaken()
		}
		return nil, fmt.Errorf("service create team: %w", err)
	}
	s.log.Info("team created", slog.Int64("team_id", team.ID))
	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	team, err := s.teams.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrTeamNotFound) {
			return nil, fmt.Errorf("get team: %w", ErrTeamNotFound)
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func (s *TeamService) ListTeams(ctx context.Context, page models.PageRequest) (*models.Listing[*models.Team], error) {
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	total, err := s.teams.CountTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if err := checkPageInRange(page, total); err != nil {
		return nil, err
	}
	teams, err := s.teams.ListTeams(ctx, page.PageSize, pageOffset(page))
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return &models.Listing[*models.Team]{Items: teams, Total: total, Page: page}, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, id int64, req *models.TeamRequest) (*models.Team, error) {
	if err := prepareTeam(req); err != nil {
		return nil, err
	}

	team, err := s.teams.UpdateTeam(ctx, &models.Team{ID: id, Name: req.Name})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTeamNotFound):
			return nil, fmt.Errorf("update team: %w", ErrTeamNotFound)
		case errors.Is(err, storage.ErrTeamExists):
			return nil, teamNameTaken()
		default:
			return nil, fmt.Errorf("update team: %w", err)
		}
	}
	s.log.Info("team updated", slog.Int64("team_id", id))
	return team, nil
}

func (s *TeamService) DeleteTeam(ctx context.Context, id int64) error {
	if err := s.teams.DeleteTeam(ctx, id); err != nil {
		if errors.Is(err, storage.ErrTeamNotFound) {
			return fmt.Errorf("delete team: %w", ErrTeamNotFound)
		}
		return fmt.Errorf("delete team: %w", err)
	}
	s.log.Info("team deleted", slog.Int64("team_id", id))
	return nil
}

func prepareTeam(req *models.TeamRequest) error {
	if req == nil {
		return emptyBody()
	}
	req.Name = strings.TrimSpace(req.Name)
	return validateStruct(req)
}

func teamNameTaken() *ValidationError {
	return fieldError("name", "team with this name already exists.")
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/pkg/postgres"
)

var (
	ErrTeamExists = errors.New("team already exists")
)

type TeamStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewTeamStorage(db *postgres.Postgres, log *slog.Logger) (*TeamStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &TeamStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *TeamStorage) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	exec := conn(ctx, s.db.DB)
	var team models.Team
	err := exec.QueryRowContext(
		ctx,
		"insert into teams (name) values ($1) on conflict (name) do nothing returning id, name",
		name,
	).Scan(&team.ID, &team.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("insert team %q: %w", name, ErrTeamExists)
	}
	if err != nil {
		s.log.Error("failed to create team", slog.Any("error", err))
		return nil, fmt.Errorf("insert team %q: %w", name, err)
	}
	return &team, nil
}

func (s *TeamStorage) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	exec := conn(ctx, s.db.DB)
	var team models.Team
	err := exec.QueryRowContext(ctx, "select id, name from teams where id = $1", id).Scan(&team.ID, &team.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get team %d: %w", id, ErrTeamNotFound)
	}
	if err != nil {
		s.log.Error("failed to get team", slog.Int64("team_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("get team %d: %w", id, err)
	}
	return &team, nil
}

func (s *TeamStorage) ListTeams(ctx context.Context, limit, offset int) ([]*models.Team, error) {
	limit, offset = pageArgs(limit, offset)
	exec := conn(ctx, s.db.DB)
	rows, err := exec.QueryContext(ctx, "select id, name from teams order by id limit $1 offset $2", limit, offset)
	if err != nil {
		s.log.Error("failed to list teams", slog.Any("error", err))
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0, limit)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		teams = append(teams, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *TeamStorage) CountTeams(ctx context.Context) (int64, error) {
	exec := conn(ctx, s.db.DB)
	var count int64
	if err := exec.QueryRowContext(ctx, "select count(*) from teams").Scan(&count); err != nil {
		s.log.Error("failed to count teams", slog.Any("error", err))
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return count, nil
}

func (s *TeamStorage) UpdateTeam(ctx context.Context, team *models.Team) (*models.Team, error) {
	exec := conn(ctx, s.db.DB)
	var updated models.Team
	err := exec.QueryRowContext(
		ctx,
		"update teams set name = $1 where id = $2 returning id, name",
		team.Name,
		team.ID,
	).Scan(&updated.ID, &updated.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update team %d: %w", team.ID, ErrTeamNotFound)
	}
	if pgErrorCode(err) == pgUniqueViolation {
		return nil, fmt.Errorf("update team %d: %w", team.ID, ErrTeamExists)
	}
	if err != nil {
		s.log.Error("failed to update team", slog.Int64("team_id", team.ID), slog.Any("error", err))
		return nil, fmt.Errorf("update team %d: %w", team.ID, err)
	}
	return &updated, nil
}

// DeleteTeam removes the team; members keep existing with a null team.
func (s *TeamStorage) DeleteTeam(ctx context.Context, id int64) error {
	exec := conn(ctx, s.db.DB)
	res, err := exec.ExecContext(ctx, "delete from teams where id = $1", id)
	if err != nil {
		s.log.Error("failed to delete team", slog.Int64("team_id", id), slog.Any("error", err))
		return fmt.Errorf("delete team %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		s.log.Error("failed check rows affected", slog.Any("error", err))
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete team %d: %w", id, ErrTeamNotFound)
	}
	return nil
}

func (s *TeamStorage) ExistsTeam(ctx context.Context, id int64) (bool, error) {
	exec := conn(ctx, s.db.DB)
	var exists bool

	err := exec.QueryRowContext(
		ctx,
		`select exists(
            select 1 from teams where id = $1
        )`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check team exists: %w", err)
	}

	return exists, nil
}

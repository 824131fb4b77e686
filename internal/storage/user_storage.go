package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/pkg/postgres"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
	ErrTeamNotFound = errors.New("team not found")
)

const userColumns = `id, email, first_name, last_name, password, is_staff, is_active, is_superuser, team_id, date_joined, last_login`

type UserStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewUserStorage(db *postgres.Postgres, log *slog.Logger) (*UserStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &UserStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *UserStorage) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	exec := conn(ctx, s.db.DB)
	row := exec.QueryRowContext(
		ctx,
		`
insert into users (email, password, first_name, last_name, is_staff, is_active, is_superuser, team_id)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning `+userColumns,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.IsStaff,
		u.IsActive,
		u.IsSuperuser,
		u.TeamID,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, s.writeError("create user", err)
	}
	return created, nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	exec := conn(ctx, s.db.DB)
	u, err := scanUser(exec.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user %d: %w", id, ErrUserNotFound)
	}
	if err != nil {
		s.log.Error("failed to get user", slog.Int64("user_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	exec := conn(ctx, s.db.DB)
	u, err := scanUser(exec.QueryRowContext(ctx, `select `+userColumns+` from users where lower(email) = lower($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", ErrUserNotFound)
	}
	if err != nil {
		s.log.Error("failed to get user by email", slog.Any("error", err))
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStorage) ListUsers(ctx context.Context, filter models.UserFilter, limit, offset int) ([]*models.User, error) {
	limit, offset = pageArgs(limit, offset)
	where, args := userFilterClause(filter)
	args = append(args, limit, offset)
	query := `select ` + userColumns + ` from users` + where +
		` order by id limit $` + strconv.Itoa(len(args)-1) + ` offset $` + strconv.Itoa(len(args))

	exec := conn(ctx, s.db.DB)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		s.log.Error("failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStorage) CountUsers(ctx context.Context, filter models.UserFilter) (int64, error) {
	where, args := userFilterClause(filter)
	exec := conn(ctx, s.db.DB)
	var count int64
	if err := exec.QueryRowContext(ctx, `select count(*) from users`+where, args...).Scan(&count); err != nil {
		s.log.Error("failed to count users", slog.Any("error", err))
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *UserStorage) UpdateUser(ctx context.Context, u *models.User) (*models.User, error) {
	exec := conn(ctx, s.db.DB)
	row := exec.QueryRowContext(
		ctx,
		`
update users set
email = $1,
password = $2,
first_name = $3,
last_name = $4,
is_staff = $5,
is_active = $6,
team_id = $7
where id = $8
returning `+userColumns,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.IsStaff,
		u.IsActive,
		u.TeamID,
		u.ID,
	)
	updated, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update user %d: %w", u.ID, ErrUserNotFound)
	}
	if err != nil {
		return nil, s.writeError("update user", err)
	}
	return updated, nil
}

func (s *UserStorage) DeleteUser(ctx context.Context, id int64) error {
	exec := conn(ctx, s.db.DB)
	res, err := exec.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		s.log.Error("failed to delete user", slog.Int64("user_id", id), slog.Any("error", err))
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}
	return nil
}

func (s *UserStorage) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	exec := conn(ctx, s.db.DB)
	if _, err := exec.ExecContext(ctx, `update users set last_login = $1 where id = $2`, at, id); err != nil {
		s.log.Error("failed to set last login", slog.Int64("user_id", id), slog.Any("error", err))
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

func (s *UserStorage) writeError(op string, err error) error {
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w", op, ErrEmailTaken)
	case pgForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, ErrTeamNotFound)
	}
	s.log.Error("failed to write user", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%s: %w", op, err)
}

func userFilterClause(filter models.UserFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := "$" + strconv.Itoa(len(args))
		conds = append(conds, "(email ilike "+n+" or first_name ilike "+n+" or last_name ilike "+n+")")
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		conds = append(conds, "team_id = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		teamID    sql.NullInt64
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.IsStaff,
		&u.IsActive,
		&u.IsSuperuser,
		&teamID,
		&u.DateJoined,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}
	if teamID.Valid {
		id := teamID.Int64
		u.TeamID = &id
	}
	if lastLogin.Valid {
		at := lastLogin.Time
		u.LastLogin = &at
	}
	return &u, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/pkg/postgres"
)

func newTeamStorage(t *testing.T) (*TeamStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pg := &postgres.Postgres{DB: db}
	storage, err := NewTeamStorage(pg, log)
	if err != nil {
		t.Fatalf("NewTeamStorage: %v", err)
	}
	return storage, mock
}

const insertTeamQuery = "insert into teams (name) values ($1) on conflict (name) do nothing returning id, name"

func TestTeamStorage_CreateTeam_Success(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta(insertTeamQuery)).
		WithArgs("backend").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "backend"))

	team, err := st.CreateTeam(context.Background(), "backend")
	if err != nil {
		t.Fatalf("CreateTeam returned err: %v", err)
	}
	if team.ID != 1 || team.Name != "backend" {
		t.Fatalf("unexpected team: %#v", team)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_CreateTeam_AlreadyExists(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta(insertTeamQuery)).
		WithArgs("backend").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := st.CreateTeam(context.Background(), "backend")
	if err == nil || !errors.Is(err, ErrTeamExists) {
		t.Fatalf("expected ErrTeamExists, got %v", err)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_CreateTeam_DBError(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta(insertTeamQuery)).
		WithArgs("backend").
		WillReturnError(errors.New("db error"))

	_, err := st.CreateTeam(context.Background(), "backend")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_GetTeam(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta("select id, name from teams where id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "qa"))

	team, err := st.GetTeam(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetTeam returned err: %v", err)
	}
	if team.Name != "qa" {
		t.Fatalf("unexpected team: %#v", team)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_GetTeam_NotFound(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta("select id, name from teams where id = $1")).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := st.GetTeam(context.Background(), 3)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_ListTeams(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta("select id, name from teams order by id limit $1 offset $2")).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(3), "c").
			AddRow(int64(4), "d"))

	teams, err := st.ListTeams(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListTeams returned err: %v", err)
	}
	if len(teams) != 2 || teams[0].ID != 3 || teams[1].ID != 4 {
		t.Fatalf("unexpected teams: %#v", teams)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_CountTeams(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta("select count(*) from teams")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))

	count, err := st.CountTeams(context.Background())
	if err != nil {
		t.Fatalf("CountTeams returned err: %v", err)
	}
	if count != 9 {
		t.Fatalf("expected 9, got %d", count)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_UpdateTeam(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta("update teams set name = $1 where id = $2 returning id, name")).
		WithArgs("platform", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "platform"))

	team, err := st.UpdateTeam(context.Background(), &models.Team{ID: 3, Name: "platform"})
	if err != nil {
		t.Fatalf("UpdateTeam returned err: %v", err)
	}
	if team.Name != "platform" {
		t.Fatalf("unexpected team: %#v", team)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_UpdateTeam_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "not found", err: sql.ErrNoRows, want: ErrTeamNotFound},
		{name: "duplicate name", err: &pgconn.PgError{Code: "23505"}, want: ErrTeamExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, mock := newTeamStorage(t)
			mock.ExpectQuery(regexp.QuoteMeta("update teams set name")).WillReturnError(tc.err)

			_, err := st.UpdateTeam(context.Background(), &models.Team{ID: 3, Name: "x"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			verifyExpectations(t, mock)
		})
	}
}

func TestTeamStorage_DeleteTeam(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectExec(regexp.QuoteMeta("delete from teams where id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.DeleteTeam(context.Background(), 3); err != nil {
		t.Fatalf("DeleteTeam returned err: %v", err)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_DeleteTeam_NotFound(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectExec(regexp.QuoteMeta("delete from teams where id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := st.DeleteTeam(context.Background(), 3); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
	verifyExpectations(t, mock)
}

func TestTeamStorage_ExistsTeam(t *testing.T) {
	st, mock := newTeamStorage(t)
	mock.ExpectQuery(regexp.QuoteMeta(`select exists(
            select 1 from teams where id = $1
        )`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := st.ExistsTeam(context.Background(), 3)
	if err != nil {
		t.Fatalf("ExistsTeam returned err: %v", err)
	}
	if !exists {
		t.Fatalf("expected team to exist")
	}
	verifyExpectations(t, mock)
}

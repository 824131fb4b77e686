package http

import (
	"context"
	"net/http"

	"github.com/cloudyy74/teams-api/internal/models"
)

type TeamService interface {
	CreateTeam(context.Context, *models.TeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id int64) (*models.Team, error)
	ListTeams(context.Context, models.PageRequest) (*models.Listing[*models.Team], error)
	UpdateTeam(ctx context.Context, id int64, req *models.TeamRequest) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int64) error
}

func (rtr *router) listTeams(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	listing, err := rtr.teamService.ListTeams(r.Context(), page)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, newPage(r, listing))
}

func (rtr *router) createTeam(w http.ResponseWriter, r *http.Request) {
	var req models.TeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rtr.handleError(w, err)
		return
	}

	team, err := rtr.teamService.CreateTeam(r.Context(), &req)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusCreated, team)
}

func (rtr *router) getTeam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	team, err := rtr.teamService.GetTeam(r.Context(), id)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, team)
}

func (rtr *router) updateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	var req models.TeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rtr.handleError(w, err)
		return
	}

	team, err := rtr.teamService.UpdateTeam(r.Context(), id, &req)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, team)
}

func (rtr *router) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	if err := rtr.teamService.DeleteTeam(r.Context(), id); err != nil {
		rtr.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

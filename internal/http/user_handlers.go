package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cloudyy74/teams-api/internal/models"
)

type UserService interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(context.Context, models.UserFilter, models.PageRequest) (*models.Listing[*models.User], error)
	UpdateUser(ctx context.Context, id int64, req *models.UserUpdateRequest, partial bool) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

func (rtr *router) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	filter, err := parseUserFilter(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	listing, err := rtr.userService.ListUsers(r.Context(), filter, page)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, newPage(r, listing))
}

func parseUserFilter(r *http.Request) (models.UserFilter, error) {
	q := r.URL.Query()
	filter := models.UserFilter{Search: q.Get("search")}
	if raw := strings.TrimSpace(q.Get("team")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, newFieldError("team", "Select a valid choice. That choice is not one of the available choices.")
		}
		filter.TeamID = &id
	}
	return filter, nil
}

func (rtr *router) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	user, err := rtr.userService.GetUser(r.Context(), id)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, user)
}

func (rtr *router) putUser(w http.ResponseWriter, r *http.Request) {
	rtr.updateUser(w, r, false)
}

func (rtr *router) patchUser(w http.ResponseWriter, r *http.Request) {
	rtr.updateUser(w, r, true)
}

func (rtr *router) updateUser(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := parseID(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	var req models.UserUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rtr.handleError(w, err)
		return
	}

	user, err := rtr.userService.UpdateUser(r.Context(), id, &req, partial)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, user)
}

func (rtr *router) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	if err := rtr.userService.DeleteUser(r.Context(), id); err != nil {
		rtr.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"context"
	"net/http"

	"github.com/cloudyy74/teams-api/internal/models"
)

type AuthService interface {
	Signup(context.Context, *models.SignupRequest) (*models.User, error)
	Login(context.Context, *models.TokenObtainRequest) (*models.TokenPair, error)
	Refresh(context.Context, *models.TokenRefreshRequest) (*models.TokenRefreshResponse, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func (rtr *router) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rtr.handleError(w, err)
		return
	}

	user, err := rtr.authService.Signup(r.Context(), &req)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusCreated, user)
}

func (rtr *router) obtainToken(w http.ResponseWriter, r *http.Request) {
	var req models.TokenObtainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rtr.handleError(w, err)
		return
	}

	pair, err := rtr.authService.Login(r.Context(), &req)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, pair)
}

func (rtr *router) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rtr.handleError(w, err)
		return
	}

	resp, err := rtr.authService.Refresh(r.Context(), &req)
	if err != nil {
		rtr.handleError(w, err)
		return
	}
	rtr.responseJSON(w, http.StatusOK, resp)
}

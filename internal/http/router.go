package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

// Throttler decides whether a client key may issue another request.
type Throttler interface {
	Allow(key string) bool
}

type router struct {
	authService AuthService
	userService UserService
	teamService TeamService
	throttle    Throttler
	log         *slog.Logger
}

func SetupRouter(
	mux *http.ServeMux,
	authService AuthService,
	userService UserService,
	teamService TeamService,
	throttle Throttler,
	log *slog.Logger,
) error {
	if mux == nil {
		return errors.New("mux cannot be nil")
	}
	if authService == nil {
		return errors.New("auth service cannot be nil")
	}
	if userService == nil {
		return errors.New("user service cannot be nil")
	}
	if teamService == nil {
		return errors.New("team service cannot be nil")
	}
	if throttle == nil {
		return errors.New("throttle cannot be nil")
	}
	if log == nil {
		return errors.New("logger cannot be nil")
	}
	r := router{
		authService: authService,
		userService: userService,
		teamService: teamService,
		throttle:    throttle,
		log:         log,
	}

	mux.HandleFunc("GET /ping", r.public(r.ping))

	mux.HandleFunc("POST /auth/token/{$}", r.public(r.throttleMiddleware(r.jsonMiddleware(r.obtainToken))))
	mux.HandleFunc("POST /auth/token/refresh/{$}", r.public(r.throttleMiddleware(r.jsonMiddleware(r.refreshToken))))
	mux.HandleFunc("POST /auth/signup/{$}", r.public(r.throttleMiddleware(r.jsonMiddleware(r.signup))))

	mux.HandleFunc("GET /user/{$}", r.protected(r.listUsers))
	mux.HandleFunc("GET /user/{id}/{$}", r.protected(r.getUser))
	mux.HandleFunc("PUT /user/{id}/{$}", r.protected(r.jsonMiddleware(r.putUser)))
	mux.HandleFunc("PATCH /user/{id}/{$}", r.protected(r.jsonMiddleware(r.patchUser)))
	mux.HandleFunc("DELETE /user/{id}/{$}", r.protected(r.deleteUser))

	mux.HandleFunc("GET /team/{$}", r.protected(r.listTeams))
	mux.HandleFunc("POST /team/{$}", r.protected(r.jsonMiddleware(r.createTeam)))
	mux.HandleFunc("GET /team/{id}/{$}", r.protected(r.getTeam))
	mux.HandleFunc("PUT /team/{id}/{$}", r.protected(r.jsonMiddleware(r.updateTeam)))
	mux.HandleFunc("DELETE /team/{id}/{$}", r.protected(r.deleteTeam))
	return nil
}

func (rtr *router) public(h http.HandlerFunc) http.HandlerFunc {
	return rtr.panicMiddleware(rtr.loggingMiddleware(h))
}

func (rtr *router) protected(h http.HandlerFunc) http.HandlerFunc {
	return rtr.public(rtr.authMiddleware(rtr.adminOrReadOnly(h)))
}

func (rtr *router) responseJSON(w http.ResponseWriter, statusCode int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		rtr.log.Error("failed to encode response", slog.Any("error", err))
	}
}

// decodeJSON treats an empty body as an empty object.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return newResponseError(ErrCodeRequestTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return newResponseError(ErrCodeBadRequest, "bad json request")
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, newResponseError(ErrCodeNotFound, "resource not found")
	}
	return id, nil
}

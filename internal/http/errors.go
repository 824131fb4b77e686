package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/internal/service"
)

type ResponseError struct {
	Code    string
	Message string
	Fields  map[string][]string
}

func (re ResponseError) Error() string {
	return re.Message
}

func newResponseError(code string, msg string) ResponseError {
	return ResponseError{
		Code:    code,
		Message: msg,
	}
}

func newInternalError(msg string, args ...any) ResponseError {
	return newResponseError(ErrCodeInternal, fmt.Sprintf(msg, args...))
}

func newFieldError(field, msg string) ResponseError {
	return ResponseError{
		Code:    ErrCodeValidation,
		Message: "invalid request",
		Fields:  map[string][]string{field: {msg}},
	}
}

func (rtr *router) handleError(w http.ResponseWriter, err error) {
	respErr := rtr.mapError(err)
	status := statusForCode(respErr.Code)
	if status == http.StatusInternalServerError {
		rtr.log.Error("request failed", slog.Any("error", err))
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}

	rtr.responseJSON(w, status, &models.ErrorResponse{
		Error: models.Error{
			Code:    respErr.Code,
			Message: respErr.Message,
			Fields:  respErr.Fields,
		},
	})
}

func (rtr *router) mapError(err error) ResponseError {
	var respErr ResponseError
	if errors.As(err, &respErr) {
		return respErr
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return ResponseError{Code: ErrCodeValidation, Message: "invalid request", Fields: verr.Fields}
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return newResponseError(ErrCodeValidation, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return newResponseError(ErrCodeInvalidCredentials, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrTokenNotValid):
		return newResponseError(ErrCodeTokenNotValid, service.ErrTokenNotValid.Error())
	case errors.Is(err, service.ErrAuthUserNotFound), errors.Is(err, service.ErrUserInactive):
		return newResponseError(ErrCodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrPageNotFound):
		return newResponseError(ErrCodeNotFound, "invalid page")
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrTeamNotFound):
		return newResponseError(ErrCodeNotFound, "resource not found")
	default:
		return newInternalError("internal error")
	}
}

func statusForCode(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeTokenNotValid, ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case ErrCodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

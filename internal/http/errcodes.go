package http

const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeInternal             = "INTERNAL"
	ErrCodeValidation           = "VALIDATION"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeTokenNotValid        = "TOKEN_NOT_VALID"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeThrottled            = "THROTTLED"
	ErrCodeRequestTooLarge      = "REQUEST_TOO_LARGE"
)

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes returned to clients as err_code.
const (
	CodeTokenMissing         = "TOKEN_MISSING"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeBotMismatch          = "BOT_MISMATCH"
	CodeKeyRevoked           = "KEY_REVOKED"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeConfigMissing        = "CONFIG_MISSING"
	CodeSettingsMissing      = "SETTINGS_MISSING"
	CodeSigningConfigMissing = "SIGNING_CONFIG_MISSING"
	CodeKeyLimitReached      = "KEY_LIMIT_REACHED"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Error kinds. AppError.Err carries one of these so callers can branch with
// errors.Is without looking at codes.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	ErrCredentialMissing      = errors.New("credential missing")
	ErrCredentialInvalid      = errors.New("credential invalid")
	ErrIdentityMismatch       = errors.New("identity mismatch")
	ErrAuthorizationRevoked   = errors.New("authorization revoked or unknown")
	ErrPermissionInsufficient = errors.New("permission insufficient")
	ErrProfileIncomplete      = errors.New("profile incomplete")
	ErrSigningConfigMissing   = errors.New("signing configuration missing")
	ErrKeyLimitReached        = errors.New("api key limit reached")

	// ErrCacheMiss is returned by cache stores for absent or expired keys.
	ErrCacheMiss = errors.New("cache miss")
)

// AppError is an error with an HTTP status and a stable code.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"err_code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func TokenMissing() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeTokenMissing, "Missing auth token", ErrCredentialMissing)
}

func TokenInvalid(cause error) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeTokenInvalid, "Invalid or expired token", errors.Join(ErrCredentialInvalid, cause))
}

func BotMismatch() *AppError {
	return NewAppError(http.StatusForbidden, CodeBotMismatch, "Token does not match bot", ErrIdentityMismatch)
}

func KeyRevoked() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeKeyRevoked, "Key revoked or not found", ErrAuthorizationRevoked)
}

func PermissionDenied(scope string) *AppError {
	return NewAppError(http.StatusForbidden, CodePermissionDenied, "Missing required permission: "+scope, ErrPermissionInsufficient)
}

func ConfigMissing() *AppError {
	return NewAppError(http.StatusNotFound, CodeConfigMissing, "Bot config not found", ErrProfileIncomplete)
}

func SettingsMissing() *AppError {
	return NewAppError(http.StatusNotFound, CodeSettingsMissing, "Bot settings not found", ErrProfileIncomplete)
}

// SigningConfigMissing names the missing environment variable. It is a server
// misconfiguration, never a client error.
func SigningConfigMissing(envVar string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeSigningConfigMissing, "Server misconfigured: "+envVar+" is not set", ErrSigningConfigMissing)
}

func KeyLimitReached(limit int) *AppError {
	return NewAppError(http.StatusConflict, CodeKeyLimitReached, fmt.Sprintf("API key limit reached (max %d per bot)", limit), ErrKeyLimitReached)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

// InternalError hides err from the client; it stays reachable through Unwrap.
func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_TaxonomyMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   string
		kind   error
	}{
		{TokenMissing(), http.StatusUnauthorized, CodeTokenMissing, ErrCredentialMissing},
		{TokenInvalid(stderrors.New("bad sig")), http.StatusUnauthorized, CodeTokenInvalid, ErrCredentialInvalid},
		{BotMismatch(), http.StatusForbidden, CodeBotMismatch, ErrIdentityMismatch},
		{KeyRevoked(), http.StatusUnauthorized, CodeKeyRevoked, ErrAuthorizationRevoked},
		{PermissionDenied("read"), http.StatusForbidden, CodePermissionDenied, ErrPermissionInsufficient},
		{ConfigMissing(), http.StatusNotFound, CodeConfigMissing, ErrProfileIncomplete},
		{SettingsMissing(), http.StatusNotFound, CodeSettingsMissing, ErrProfileIncomplete},
		{SigningConfigMissing("MESH_TOKEN_SECRET"), http.StatusInternalServerError, CodeSigningConfigMissing, ErrSigningConfigMissing},
		{KeyLimitReached(5), http.StatusConflict, CodeKeyLimitReached, ErrKeyLimitReached},
		{NotFound("missing"), http.StatusNotFound, CodeNotFound, ErrNotFound},
		{BadRequest("bad"), http.StatusBadRequest, CodeInvalidInput, ErrInvalidInput},
		{Unauthorized("no"), http.StatusUnauthorized, CodeUnauthorized, ErrUnauthorized},
		{Forbidden("no"), http.StatusForbidden, CodeForbidden, ErrForbidden},
		{Conflict("dup"), http.StatusConflict, CodeConflict, ErrAlreadyExists},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status, tc.code)
		assert.Equal(t, tc.code, tc.err.Code)
		assert.ErrorIs(t, tc.err, tc.kind, tc.code)
	}
}

func TestAppError_MessagesDoNotLeakCause(t *testing.T) {
	cause := stderrors.New("sql: relation api_keys does not exist")
	internal := InternalError(cause)
	assert.Equal(t, "Internal server error", internal.Message)
	assert.ErrorIs(t, internal, cause)
	assert.Contains(t, internal.Error(), "relation api_keys")

	assert.Equal(t, "Key revoked or not found", KeyRevoked().Message)
	assert.Equal(t, "Invalid or expired token", TokenInvalid(nil).Message)
	assert.Contains(t, SigningConfigMissing("WIDGET_SIGNING_PRIVATE_KEY").Message, "WIDGET_SIGNING_PRIVATE_KEY")
	assert.Contains(t, KeyLimitReached(5).Message, "5")
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", KeyRevoked())
	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeKeyRevoked, appErr.Code)

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)

	plain := NewAppError(http.StatusTeapot, "X", "msg", nil)
	assert.Equal(t, "msg", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

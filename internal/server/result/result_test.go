package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueStatuses(t *testing.T) {
	tests := []struct {
		err    Error
		status int
	}{
		{UserNotFound, http.StatusNotFound},
		{PasswordDoesNotMatch, http.StatusUnauthorized},
		{InvalidRefreshToken, http.StatusUnauthorized},
		{RefreshTokenNotFound, http.StatusUnauthorized},
		{UnauthorizedAccess, http.StatusUnauthorized},
		{BadRequest, http.StatusBadRequest},
		{Timeout, http.StatusRequestTimeout},
		{ServerError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.status, Failure[string](tt.err).Status())
		})
	}
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", RefreshTokenNotFound)
	assert.ErrorIs(t, wrapped, RefreshTokenNotFound)
	assert.False(t, errors.Is(wrapped, InvalidRefreshToken))
	assert.Equal(t, "UserNotFound: User not found", UserNotFound.Error())
}

func TestResult_SuccessAndFailure(t *testing.T) {
	ok := Success("done")
	assert.True(t, ok.IsSuccess())
	assert.NoError(t, ok.Err())
	assert.Equal(t, http.StatusOK, ok.Status())
	assert.Equal(t, "done", ok.Value)

	bad := Failure[string](UserNotFound, ServerError)
	assert.False(t, bad.IsSuccess())
	assert.ErrorIs(t, bad.Err(), UserNotFound)
	assert.Equal(t, http.StatusNotFound, bad.Status())
	assert.Empty(t, bad.Value)
}

func TestResult_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Success(map[string]string{"a": "b"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSuccess":true,"errors":[],"value":{"a":"b"}}`, string(b))

	b, err = json.Marshal(Failure[string](PasswordDoesNotMatch))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSuccess":false,"errors":[{"code":"PasswordDoesNotMatch","description":"Password doesn't match"}],"value":null}`, string(b))
}

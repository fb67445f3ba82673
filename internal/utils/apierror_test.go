package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAPIError_IsMatchesByStatus(t *testing.T) {
	err := fmt.Errorf("login: %w", Unauthorized("password is incorrect"))

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "login: password is incorrect", err.Error())
}

func TestAPIError_InternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("could not store refresh token", cause)

	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not store refresh token", err.Message)
}

func TestAPIError_CauseWithSameMessageNotRepeated(t *testing.T) {
	cause := errors.New("password is required")
	err := BadRequest(cause.Error()).WithCause(cause)

	assert.Equal(t, "password is required", err.Error())
	assert.ErrorIs(t, err, cause)

	err = BadRequest("invalid email format").WithCause(errors.New("missing @"))
	assert.Equal(t, "invalid email format: missing @", err.Error())
}

func TestAsAPIError_UnknownBecomes500(t *testing.T) {
	apiErr := AsAPIError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, ErrInvariantViolation.Message, apiErr.Message)
}

func TestRespondError_Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", NotFound("user does not exist"), http.StatusNotFound, "user does not exist"},
		{"conflict", Conflict("user already exists"), http.StatusConflict, "user already exists"},
		{"internal hides cause", Internal("could not login", errors.New("pq: secret detail")), http.StatusInternalServerError, "could not login"},
		{"plain error", errors.New("pq: secret detail"), http.StatusInternalServerError, ErrInvariantViolation.Message},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, tc.err, logger)

			require.Equal(t, tc.status, w.Code)
			var body APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.StatusCode)
			assert.Equal(t, tc.message, body.Message)
			assert.False(t, body.Success)
			assert.NotContains(t, w.Body.String(), "secret detail")
		})
	}
}

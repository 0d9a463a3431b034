package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"craftbot/challenge"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func performError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	replyError(c, zap.NewNop(), err)
	return recorder
}

func TestReplyErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{challenge.ErrUnauthorized, http.StatusForbidden},
		{challenge.ErrConflict, http.StatusConflict},
		{challenge.ErrInvalidState, http.StatusConflict},
		{challenge.ErrNotFound, http.StatusNotFound},
		{challenge.ErrNoActiveChallenge, http.StatusBadRequest},
		{challenge.ErrFinalized, http.StatusBadRequest},
		{challenge.ErrInvalidImage, http.StatusBadRequest},
		{challenge.ErrEmpty, http.StatusBadRequest},
		{challenge.ErrNoUpdates, http.StatusBadRequest},
	}
	for _, tc := range cases {
		recorder := performError(t, tc.err)
		assert.Equal(t, tc.status, recorder.Code, "error %v", tc.err)
		assert.Contains(t, recorder.Body.String(), tc.err.Error())
	}
}

func TestReplyErrorHandlesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("starting voting: %w", challenge.ErrInvalidState)
	recorder := performError(t, wrapped)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestReplyErrorHidesInternalDetail(t *testing.T) {
	recorder := performError(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "connection refused")
	assert.Contains(t, recorder.Body.String(), "Please try again later")
}

func TestParseDeadline(t *testing.T) {
	// Historical space-separated form, read as UTC.
	parsed, ok := parseDeadline("2025-06-01 15:04:05")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC), parsed)

	parsed, ok = parseDeadline("2025-06-01T15:04:05+02:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 13, 4, 5, 0, time.UTC), parsed.UTC())

	_, ok = parseDeadline("June 1st")
	assert.False(t, ok)
	_, ok = parseDeadline("")
	assert.False(t, ok)
}

package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLimited(t *testing.T, limiter *RateLimiter) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/station/patients/p1/serve-now", nil)
	req.RemoteAddr = "10.0.0.7:1234"
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(req, rec)

	handler := limiter.StationRateLimit()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	require.NoError(t, handler(c))
	return rec
}

func TestStationRateLimit_UnderLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectIncr("ratelimit:station:10.0.0.7").SetVal(1)
	mock.ExpectExpire("ratelimit:station:10.0.0.7", time.Minute).SetVal(true)

	rec := runLimited(t, NewRateLimiter(db, 5))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStationRateLimit_OverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectIncr("ratelimit:station:10.0.0.7").SetVal(6)

	rec := runLimited(t, NewRateLimiter(db, 5))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestStationRateLimit_FailsOpen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectIncr("ratelimit:station:10.0.0.7").SetErr(assert.AnError)

	rec := runLimited(t, NewRateLimiter(db, 5))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStationRateLimit_NoRedis(t *testing.T) {
	rec := runLimited(t, NewRateLimiter(nil, 5))
	assert.Equal(t, http.StatusOK, rec.Code)
}

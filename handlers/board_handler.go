package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"

	"clinic-queue/services"
	"clinic-queue/utils"
)

// BoardHandler serves the public "now serving" projection to display
// clients.
type BoardHandler struct {
	display *services.DisplayService
	redis   *redis.Client
}

func NewBoardHandler(display *services.DisplayService, redisClient *redis.Client) *BoardHandler {
	return &BoardHandler{
		display: display,
		redis:   redisClient,
	}
}

func (h *BoardHandler) GetBoard(c echo.Context) error {
	boards, updatedAt := h.display.Boards()
	return c.JSON(http.StatusOK, map[string]any{
		"counters":  boards,
		"updatedAt": updatedAt,
	})
}

func (h *BoardHandler) Health(c echo.Context) error {
	if h.redis != nil {
		if err := utils.RedisHealthCheck(h.redis); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

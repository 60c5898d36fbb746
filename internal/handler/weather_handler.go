package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

type WeatherSource interface {
	Current(ctx context.Context, location string) (json.RawMessage, error)
}

type WeatherHandler struct {
	Source WeatherSource
}

func NewWeatherHandler(src WeatherSource) *WeatherHandler {
	return &WeatherHandler{Source: src}
}

// Current handles GET /api/weather/:location and relays the upstream body.
func (h *WeatherHandler) Current(c echo.Context) error {
	body, err := h.Source.Current(c.Request().Context(), c.Param("location"))
	if err != nil {
		c.Logger().Warnf("weather for %q: %v", c.Param("location"), err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch weather data"))
	}
	return c.JSONBlob(http.StatusOK, body)
}

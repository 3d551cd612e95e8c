package alert

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dentalos/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/alerts/expiring", h.Expiring)
	api.GET("/alerts/low-stock", h.LowStock)
	api.PUT("/alerts/email", h.SetEmail)
	api.DELETE("/alerts/email", h.ClearEmail)
	api.POST("/alerts/test", h.SendTest)
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *Handler) Expiring(c echo.Context) error {
	days, err := intQuery(c, "days")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "days must be an integer")
	}
	notify := c.QueryParam("notify") == "true"
	result, err := h.svc.Expiring(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), days, notify)
	if errors.Is(err, ErrDoctorNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) LowStock(c echo.Context) error {
	threshold, err := intQuery(c, "threshold")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "threshold must be an integer")
	}
	items, err := h.svc.LowStock(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), threshold)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) SetEmail(c echo.Context) error {
	var req struct {
		AlertEmail string `json:"alert_email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.SetAlertEmail(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), req.AlertEmail)
	if errors.Is(err, ErrDoctorNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"alert_email": req.AlertEmail})
}

func (h *Handler) ClearEmail(c echo.Context) error {
	err := h.svc.ClearAlertEmail(c.Request().Context(), auth.DoctorEmail(c.Request().Context()))
	if errors.Is(err, ErrDoctorNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SendTest(c echo.Context) error {
	days, err := intQuery(c, "days")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "days must be an integer")
	}
	result, err := h.svc.SendTest(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), days)
	if errors.Is(err, ErrDoctorNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

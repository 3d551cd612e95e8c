package settings

import (
	"errors"
	"net/http"

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
	api.GET("/settings", h.GetSettings)
	api.POST("/settings/procedures", h.AddProcedure)
	api.PUT("/settings/procedures", h.ReplaceProcedures)
	api.DELETE("/settings/procedures/:name", h.DeleteProcedure)
	api.PUT("/settings/currency", h.SetCurrency)
}

func (h *Handler) GetSettings(c echo.Context) error {
	cfg, err := h.svc.Get(c.Request().Context(), auth.DoctorEmail(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

type addProcedureRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (h *Handler) AddProcedure(c echo.Context) error {
	var req addProcedureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cfg, err := h.svc.AddProcedure(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), req.Name, req.Price)
	if errors.Is(err, ErrDuplicateProcedure) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cfg)
}

func (h *Handler) ReplaceProcedures(c echo.Context) error {
	var updates []ProcedureUpdate
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cfg, err := h.svc.ReplaceProcedures(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), updates)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *Handler) DeleteProcedure(c echo.Context) error {
	cfg, err := h.svc.DeleteProcedure(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("name"))
	if errors.Is(err, ErrUnknownProcedure) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

func (h *Handler) SetCurrency(c echo.Context) error {
	var req currencyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cfg, err := h.svc.SetCurrency(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), req.Currency)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

package treatment

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
	api.GET("/patients/:file_id/plan", h.GetPlan)
	api.POST("/patients/:file_id/plan", h.AddProcedure)
	api.PUT("/patients/:file_id/plan", h.BulkUpdate)
	api.GET("/patients/:file_id/plan/cost", h.GetCost)
}

func (h *Handler) GetPlan(c echo.Context) error {
	plan, err := h.svc.GetPlan(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("file_id"))
	if errors.Is(err, ErrPatientNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if plan == nil {
		plan = []Entry{}
	}
	return c.JSON(http.StatusOK, plan)
}

type addProcedureRequest struct {
	Tooth     string `json:"tooth"`
	Procedure string `json:"procedure"`
	Condition string `json:"condition"`
}

func (h *Handler) AddProcedure(c echo.Context) error {
	var req addProcedureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, plan, err := h.svc.AddProcedure(c.Request().Context(),
		auth.DoctorEmail(c.Request().Context()), c.Param("file_id"),
		req.Tooth, req.Procedure, req.Condition)
	switch {
	case errors.Is(err, ErrDuplicateEntry):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"entry": entry,
		"plan":  plan,
	})
}

type bulkUpdateRequest struct {
	Updates   []RowUpdate `json:"updates"`
	Deletions []int       `json:"deletions"`
}

func (h *Handler) BulkUpdate(c echo.Context) error {
	var req bulkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan, err := h.svc.BulkUpdate(c.Request().Context(),
		auth.DoctorEmail(c.Request().Context()), c.Param("file_id"),
		req.Updates, req.Deletions)
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) GetCost(c echo.Context) error {
	var discount float64
	if raw := c.QueryParam("discount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid discount")
		}
		discount = parsed
	}
	vatEnabled := c.QueryParam("vat") == "true"

	summary, err := h.svc.Cost(c.Request().Context(),
		auth.DoctorEmail(c.Request().Context()), c.Param("file_id"), discount, vatEnabled)
	if errors.Is(err, ErrPatientNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

package chart

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the static chart reference data UI clients render from.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/chart/conditions", h.ListConditions)
	api.GET("/chart/layout", h.GetLayout)
}

type conditionView struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) ListConditions(c echo.Context) error {
	out := make([]conditionView, 0, len(conditionOrder))
	for _, name := range Conditions() {
		out = append(out, conditionView{Name: name, Color: ConditionColor(name)})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetLayout(c echo.Context) error {
	patientType := c.QueryParam("patient_type")
	if patientType != "" && patientType != "adult" && patientType != "child" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_type must be adult or child")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_type": patientTypeOrDefault(patientType),
		"rows":         Rows(patientType),
	})
}

func patientTypeOrDefault(patientType string) string {
	if patientType == "child" {
		return "child"
	}
	return "adult"
}

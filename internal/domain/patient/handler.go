package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dentalos/clinic/internal/platform/auth"
	"github.com/dentalos/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.Register)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:file_id", h.GetPatient)
	api.PUT("/patients/:file_id", h.EditPatient)
	api.PUT("/patients/:file_id/chart", h.UpdateChart)
	api.POST("/patients/:file_id/xrays", h.UploadXRay)
	api.DELETE("/patients/:file_id/xrays/:index", h.DeleteXRay)
	api.GET("/patients/:file_id/report", h.DownloadReport)
}

func (h *Handler) Register(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.Register(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), &p)
	if errors.Is(err, ErrConflict) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("file_id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.List(c.Request().Context(), auth.DoctorEmail(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pg := pagination.FromContext(c)
	page, total := pagination.Slice(patients, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, total, pg.Limit, pg.Offset))
}

func (h *Handler) EditPatient(c echo.Context) error {
	var req EditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Edit(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("file_id"), req)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateChart(c echo.Context) error {
	var pending map[string]string
	if err := c.Bind(&pending); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.UpdateChart(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("file_id"), pending)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"dental_chart": res.Chart,
		"changed":      res.Changed,
		"pre_selected": res.PreSelected,
	})
}

func (h *Handler) UploadXRay(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer file.Close()

	record, err := h.svc.AddXRay(c.Request().Context(),
		auth.DoctorEmail(c.Request().Context()), c.Param("file_id"),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"),
		c.FormValue("caption"), file)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *Handler) DeleteXRay(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	err = h.svc.DeleteXRay(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("file_id"), index)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DownloadReport(c echo.Context) error {
	var discount float64
	if raw := c.QueryParam("discount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid discount")
		}
		discount = parsed
	}
	vatEnabled := c.QueryParam("vat") == "true"

	ctx := c.Request().Context()
	pdf, filename, err := h.svc.Report(ctx, auth.DoctorEmail(ctx), auth.DoctorName(ctx), c.Param("file_id"), discount, vatEnabled)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

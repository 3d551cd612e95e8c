package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

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
	api.GET("/inventory", h.Overview)
	api.POST("/inventory", h.AddItem)
	api.GET("/inventory/search", h.Search)
	api.GET("/inventory/stats", h.Stats)
	api.GET("/inventory/export", h.Export)
	api.POST("/inventory/import", h.Import)
	api.PUT("/inventory/:item_id", h.EditItem)
	api.POST("/inventory/:item_id/decrement", h.DecrementItem)
	api.DELETE("/inventory/:item_id", h.RemoveItem)
}

func (h *Handler) Overview(c echo.Context) error {
	filter := Status(c.QueryParam("status"))
	switch filter {
	case "", StatusNormal, StatusExpiringSoon, StatusLowStock, StatusExpired, StatusOutOfStock:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status filter")
	}
	rows, err := h.svc.Overview(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pg := pagination.FromContext(c)
	page, total := pagination.Slice(rows, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, total, pg.Limit, pg.Offset))
}

func (h *Handler) AddItem(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.Add(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), req)
	if errors.Is(err, ErrConflict) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) EditItem(c echo.Context) error {
	var req EditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.Edit(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("item_id"), req)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, ErrConflict) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DecrementItem(c echo.Context) error {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.Decrement(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("item_id"), req.Amount)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	err := h.svc.Remove(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), c.Param("item_id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "search query is required")
	}
	items, err := h.svc.Search(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Summary(c.Request().Context(), auth.DoctorEmail(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) Import(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer file.Close()

	var records []ImportRecord
	switch strings.ToLower(path.Ext(fileHeader.Filename)) {
	case ".csv":
		records, err = ParseCSV(file)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	case ".json":
		raw, err := io.ReadAll(file)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := json.Unmarshal(raw, &records); err != nil {
			// A single object is accepted as a one-record import.
			var single ImportRecord
			if err := json.Unmarshal(raw, &single); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "file must be a JSON array or object")
			}
			records = []ImportRecord{single}
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "only csv and json files are supported")
	}

	count, err := h.svc.Import(c.Request().Context(), auth.DoctorEmail(c.Request().Context()), records)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"imported": count})
}

func (h *Handler) Export(c echo.Context) error {
	records, err := h.svc.Export(c.Request().Context(), auth.DoctorEmail(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	stamp := time.Now().Format("2006-01-02")
	switch c.QueryParam("format") {
	case "", "csv":
		var buf bytes.Buffer
		if err := WriteCSV(&buf, records); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="inventory_report_`+stamp+`.csv"`)
		return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
	case "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="inventory_report_`+stamp+`.json"`)
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be csv or json")
	}
}

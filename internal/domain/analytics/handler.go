package analytics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/export"
)

// HeaderExportLocation carries the archive location of a stored snapshot.
const HeaderExportLocation = "X-Export-Location"

// Handler exposes the reports and CSV snapshots over HTTP.
type Handler struct {
	svc      *Service
	exporter *export.Exporter
}

func NewHandler(svc *Service, exporter *export.Exporter) *Handler {
	return &Handler{svc: svc, exporter: exporter}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics/kpis", h.GetKPIs)
	api.GET("/referrals/:id/progress", h.GetProgress)
	api.GET("/exports/referrals.csv", h.ExportReferrals)
	api.GET("/exports/ambulances.csv", h.ExportAmbulances)
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errs.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errs.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) GetKPIs(c echo.Context) error {
	k, err := h.svc.KPIs(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, k)
}

func (h *Handler) GetProgress(c echo.Context) error {
	mp, err := h.svc.Progress(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, mp)
}

// ExportReferrals streams the patient snapshot as CSV. With ?archive=true
// a timestamped copy is stored through the archive and its location is
// returned in the X-Export-Location header.
func (h *Handler) ExportReferrals(c echo.Context) error {
	return h.export(c, "referrals", h.svc.ReferralsTable)
}

// ExportAmbulances streams the fleet snapshot as CSV.
func (h *Handler) ExportAmbulances(c echo.Context) error {
	return h.export(c, "ambulances", h.svc.AmbulancesTable)
}

func (h *Handler) export(c echo.Context, name string, build func(context.Context) (*export.Table, error)) error {
	ctx := c.Request().Context()
	t, err := build(ctx)
	if err != nil {
		return httpError(err)
	}
	if c.QueryParam("archive") == "true" {
		location, err := h.exporter.Export(ctx, name, *t)
		if err != nil {
			return httpError(err)
		}
		c.Response().Header().Set(HeaderExportLocation, location)
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.csv", name))
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteCSV(c.Response(), *t)
}

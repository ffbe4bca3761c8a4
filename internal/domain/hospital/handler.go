package hospital

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/hoslink/hoslink/internal/platform/auth"
	"github.com/hoslink/hoslink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Facility reads are open to any authenticated role.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/hospitals", h.ListHospitals)
	api.GET("/hospitals/referral-sources", h.GetReferralSources)
	api.GET("/hospitals/:name", h.GetHospital)
	api.GET("/hospitals/:name/referral-targets", h.GetReferralTargets)
}

func (h *Handler) ListHospitals(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetHospital(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	hospital, err := h.svc.Get(c.Request().Context(), name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "hospital not found")
	}
	return c.JSON(http.StatusOK, hospital)
}

func (h *Handler) GetReferralTargets(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	hospital, err := h.svc.Get(c.Request().Context(), name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "hospital not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"facility_name": hospital.FacilityName,
		"targets":       h.svc.ReferralTargets(hospital.FacilityName),
	})
}

// GetReferralSources lists the facilities the signed-in user may refer
// from, scoped by the facility on their identity.
func (h *Handler) GetReferralSources(c echo.Context) error {
	id := auth.FromContext(c.Request().Context())
	if id == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	sources, err := h.svc.ReferralSources(c.Request().Context(), id.Facility)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"facility": id.Facility,
		"sources":  sources,
	})
}

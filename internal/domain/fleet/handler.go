package fleet

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/auth"
	"github.com/hoslink/hoslink/pkg/pagination"
)

// Handler exposes the fleet over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Reads: any authenticated role
	api.GET("/ambulances", h.ListAmbulances)
	api.GET("/ambulances/:id", h.GetAmbulance)
	api.GET("/ambulances/:id/locations", h.ListLocations)

	// Position and state writes: the driver on the vehicle, or an admin
	driverGroup := api.Group("", auth.RequireRole(auth.RoleDriver))
	driverGroup.POST("/ambulances/:id/location", h.UpdateLocation)
	driverGroup.POST("/ambulances/:id/state", h.SetState)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/ambulances/:id/release", h.ReleaseAmbulance)
}

// httpError maps domain error kinds onto HTTP status codes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errs.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errs.IsInvalidState(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errs.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// pathParam returns the named route parameter with URL escapes decoded.
// Ambulance registrations contain spaces, which arrive percent-encoded.
func pathParam(c echo.Context, name string) string {
	v, err := url.PathUnescape(c.Param(name))
	if err != nil {
		return c.Param(name)
	}
	return v
}

func (h *Handler) ListAmbulances(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	if status := c.QueryParam("status"); status != "" {
		items, total, err := h.svc.ListByStatus(ctx, status, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetAmbulance(c echo.Context) error {
	a, err := h.svc.Get(c.Request().Context(), pathParam(c, "id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "ambulance not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListLocations(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.LocationHistory(c.Request().Context(), pathParam(c, "id"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type locationRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name"`
	PatientID    *string `json:"patient_id"`
}

func (h *Handler) UpdateLocation(c echo.Context) error {
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lu, err := h.svc.UpdateLocation(c.Request().Context(), pathParam(c, "id"),
		req.Latitude, req.Longitude, req.LocationName, req.PatientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, lu)
}

type stateRequest struct {
	State string `json:"state"`
}

func (h *Handler) SetState(c echo.Context) error {
	var req stateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.SetMaintenanceState(c.Request().Context(), pathParam(c, "id"), req.State)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ReleaseAmbulance(c echo.Context) error {
	a, err := h.svc.Release(c.Request().Context(), pathParam(c, "id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

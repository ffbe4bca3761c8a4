package dispatch

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/auth"
)

// Handler exposes the mission flow over HTTP.
type Handler struct {
	coord *Coordinator
}

func NewHandler(coord *Coordinator) *Handler {
	return &Handler{coord: coord}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staffGroup := api.Group("", auth.RequireRole(auth.RoleStaff))
	staffGroup.POST("/referrals/:id/assign", h.AssignAmbulance)

	driverGroup := api.Group("", auth.RequireRole(auth.RoleDriver))
	driverGroup.POST("/ambulances/:id/accept", h.AcceptMission)
	driverGroup.POST("/ambulances/:id/complete", h.CompleteMission)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/ambulances/:id/cancel", h.CancelMission)
}

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

func actorFrom(c echo.Context) string {
	if id := auth.FromContext(c.Request().Context()); id != nil {
		return id.Username
	}
	return ""
}

type assignRequest struct {
	AmbulanceID string `json:"ambulance_id"`
}

func (h *Handler) AssignAmbulance(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.AmbulanceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ambulance_id is required")
	}
	p, err := h.coord.Assign(c.Request().Context(), c.Param("id"), req.AmbulanceID, actorFrom(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// acceptRequest optionally names a patient, letting an available driver
// claim an unassigned referral and accept it in one call.
type acceptRequest struct {
	PatientID string `json:"patient_id"`
}

func (h *Handler) AcceptMission(c echo.Context) error {
	var req acceptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	ambulanceID := pathParam(c, "id")
	actor := actorFrom(c)

	if req.PatientID != "" {
		if _, err := h.coord.Assign(ctx, req.PatientID, ambulanceID, actor); err != nil {
			return httpError(err)
		}
	}
	p, err := h.coord.AcceptMission(ctx, ambulanceID, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteMission(c echo.Context) error {
	p, err := h.coord.CompleteMission(c.Request().Context(), pathParam(c, "id"), actorFrom(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CancelMission(c echo.Context) error {
	ambulanceID := pathParam(c, "id")
	stopped := h.coord.CancelMission(c.Request().Context(), ambulanceID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ambulance_id": ambulanceID,
		"stopped":      stopped,
	})
}

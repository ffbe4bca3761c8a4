package comms

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/auth"
	"github.com/hoslink/hoslink/pkg/pagination"
)

// Handler exposes the communications log over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/communications", h.ListMessages)
	api.GET("/communications/patient/:id", h.ListPatientMessages)
	api.POST("/communications", h.SendMessage)

	driverGroup := api.Group("", auth.RequireRole(auth.RoleDriver))
	driverGroup.POST("/communications/emergency", h.SendEmergencyAlert)
}

// httpError maps domain error kinds onto HTTP status codes.
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

func (h *Handler) ListMessages(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	if pid := c.QueryParam("patient_id"); pid != "" {
		items, total, err := h.svc.ListByPatient(ctx, pid, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	if aid := c.QueryParam("ambulance_id"); aid != "" {
		items, total, err := h.svc.ListByAmbulance(ctx, aid, pg.Limit, pg.Offset)
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

func (h *Handler) ListPatientMessages(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), c.Param("id"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SendMessage(c echo.Context) error {
	var m Message
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if m.Sender == "" {
		if id := auth.FromContext(c.Request().Context()); id != nil {
			m.Sender = id.Username
		}
	}
	if err := h.svc.Send(c.Request().Context(), &m); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

type emergencyRequest struct {
	PatientID   string `json:"patient_id"`
	AmbulanceID string `json:"ambulance_id"`
}

func (h *Handler) SendEmergencyAlert(c echo.Context) error {
	var req emergencyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sender := ""
	if id := auth.FromContext(c.Request().Context()); id != nil {
		sender = id.Username
	}
	sent, err := h.svc.EmergencyAlert(c.Request().Context(), req.PatientID, req.AmbulanceID, sender)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sent)
}

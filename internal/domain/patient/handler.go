package patient

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/auth"
	"github.com/hoslink/hoslink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Reads: any authenticated role
	api.GET("/referrals", h.ListReferrals)
	api.GET("/referrals/:id", h.GetReferral)

	// Referral creation and handover: hospital staff
	staffGroup := api.Group("", auth.RequireRole(auth.RoleStaff))
	staffGroup.POST("/referrals", h.CreateReferral)
	staffGroup.POST("/referrals/:id/handover", h.CompleteHandover)

	// Status and vitals: staff at either end or the driver on the mission
	fieldGroup := api.Group("", auth.RequireRole(auth.RoleStaff, auth.RoleDriver))
	fieldGroup.POST("/referrals/:id/status", h.UpdateStatus)
	fieldGroup.POST("/referrals/:id/vitals", h.RecordVitals)
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

func (h *Handler) CreateReferral(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id := auth.FromContext(c.Request().Context()); id != nil {
		p.CreatedBy = &id.Role
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetReferral(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListReferrals(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	if status := c.QueryParam("status"); status != "" {
		items, total, err := h.svc.ListByStatus(ctx, status, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	if facility := c.QueryParam("hospital"); facility != "" {
		items, total, err := h.svc.ListByHospital(ctx, facility, pg.Limit, pg.Offset)
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

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Transition(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteHandover(c echo.Context) error {
	var in HandoverInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id := auth.FromContext(c.Request().Context()); id != nil {
		in.Actor = id.Role
	}
	form, err := h.svc.CompleteHandover(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, form)
}

type vitalsRequest struct {
	VitalSigns map[string]string `json:"vital_signs"`
}

func (h *Handler) RecordVitals(c echo.Context) error {
	var req vitalsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := "Driver"
	if id := auth.FromContext(c.Request().Context()); id != nil {
		actor = id.Username
	}
	p, err := h.svc.RecordVitals(c.Request().Context(), c.Param("id"), req.VitalSigns, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

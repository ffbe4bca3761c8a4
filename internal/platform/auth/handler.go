package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the login endpoint.
type Handler struct {
	provider Provider
	cfg      JWTConfig
}

// NewHandler creates a Handler backed by the given credential provider.
func NewHandler(provider Provider, cfg JWTConfig) *Handler {
	return &Handler{provider: provider, cfg: cfg}
}

// RegisterRoutes mounts the auth routes on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/auth/login", h.Login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string    `json:"token"`
	Identity *Identity `json:"identity"`
}

// Login authenticates a username/password pair and returns a session token.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	id, err := h.provider.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
	}
	if id == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := IssueToken(h.cfg, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "token issue failed")
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, Identity: id})
}

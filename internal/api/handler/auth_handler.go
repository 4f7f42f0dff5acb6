package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new account and returns the first token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  apiResponse
// @Failure      422   {object}  apiResponse
// @Failure      500   {object}  apiResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return fail(c, http.StatusInternalServerError, "Registration failed. Please try again.")
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return ok(c, http.StatusCreated, "Registration successful", toTokenResponse(result))
}

// Login authenticates by email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      422   {object}  apiResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password produce this same response.
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return ok(c, http.StatusOK, "Login successful", toTokenResponse(result))
}

// Me returns the authenticated caller's account summary.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Me(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthenticated")
	}

	return c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Refresh exchanges the presented token for a fresh one. The token may be
// expired as long as it is still inside the refresh window, so this endpoint
// reads the header itself instead of sitting behind the auth middleware.
//
// @Summary      Refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := bearerToken(c)
	if raw == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "failure").Inc()
		return fail(c, http.StatusUnauthorized, "Unable to refresh token")
	}

	result, err := h.authService.Refresh(c.Request().Context(), raw)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "failure").Inc()
		return fail(c, http.StatusUnauthorized, "Unable to refresh token")
	}

	metrics.AuthAttemptsTotal.WithLabelValues("refresh", "success").Inc()
	metrics.TokensRevokedTotal.Inc()
	return ok(c, http.StatusOK, "Token refreshed successfully", toTokenResponse(result))
}

// Logout revokes the presented token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, _ := c.Get(CtxToken).(string)
	if raw == "" {
		return fail(c, http.StatusBadRequest, "Unable to logout")
	}

	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to logout")
	}

	metrics.TokensRevokedTotal.Inc()
	return ok(c, http.StatusOK, "Logout successful", nil)
}

func toTokenResponse(r *ports.AuthResult) tokenResponse {
	resp := tokenResponse{
		Token:     r.Token,
		TokenType: r.TokenType,
		ExpiresIn: r.ExpiresIn,
	}
	if r.User != nil {
		resp.User = &userResponse{ID: r.User.ID, Name: r.User.Name, Email: r.User.Email}
	}
	return resp
}

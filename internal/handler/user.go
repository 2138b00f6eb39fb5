package handler

import (
	"errors"
	"net/http"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/dto"
	"payhere-integration-demo/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email or password")
	}

	if err := h.userService.Register(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, apperr.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"msg": "registered"})
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	token, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrBadCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	return c.JSON(http.StatusOK, &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ryabkov/filegallery/internal/models"
)

// Login (POST /api/auth/login).
// A malformed body is treated as empty credentials: the caller learns
// nothing beyond "invalid credentials".
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	_ = ctx.Bind(&req)

	creds, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password, ctx.RealIP())
	if err != nil {
		return err
	}

	c.setAuthCookies(ctx, creds)
	return ctx.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// Refresh (POST /api/auth/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	creds, err := c.authService.Refresh(ctx.Request().Context(), cookieValue(ctx, RefreshCookieName))
	if err != nil {
		return err
	}

	c.setAuthCookies(ctx, creds)
	return ctx.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// Logout (POST /api/auth/logout). Always succeeds and always clears both
// cookies, whatever state the presented refresh token is in.
func (c *Controller) Logout(ctx echo.Context) error {
	if err := c.authService.Logout(ctx.Request().Context(), cookieValue(ctx, RefreshCookieName)); err != nil {
		return err
	}

	c.clearAuthCookies(ctx)
	return ctx.JSON(http.StatusOK, models.OKResponse{OK: true})
}

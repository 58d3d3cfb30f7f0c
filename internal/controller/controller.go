package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/service"
	"github.com/ryabkov/filegallery/internal/util"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

type Controller struct {
	zapLogger     *zap.SugaredLogger
	authService   *service.AuthService
	gallery       *service.GalleryService
	uploadConfig  *util.UploadConfig
	secureCookies bool
}

func NewController(
	logger *zap.SugaredLogger,
	authService *service.AuthService,
	gallery *service.GalleryService,
	uploadConfig *util.UploadConfig,
	secureCookies bool,
) *Controller {
	return &Controller{
		zapLogger:     logger,
		authService:   authService,
		gallery:       gallery,
		uploadConfig:  uploadConfig,
		secureCookies: secureCookies,
	}
}

// (GET /api/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}

// setAuthCookies hands both tokens to the browser. HttpOnly and
// SameSite=Lax always; Secure only in production so local HTTP still works.
func (c *Controller) setAuthCookies(ctx echo.Context, creds *models.Credentials) {
	tokens := c.authService.Tokens()
	ctx.SetCookie(c.authCookie(AccessCookieName, creds.AccessToken, int(tokens.AccessTTL().Seconds())))
	ctx.SetCookie(c.authCookie(RefreshCookieName, creds.RefreshToken, int(tokens.RefreshTTL().Seconds())))
}

func (c *Controller) clearAuthCookies(ctx echo.Context) {
	ctx.SetCookie(c.authCookie(AccessCookieName, "", -1))
	ctx.SetCookie(c.authCookie(RefreshCookieName, "", -1))
}

func (c *Controller) authCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secureCookies,
	}
}

func cookieValue(ctx echo.Context, name string) string {
	cookie, err := ctx.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

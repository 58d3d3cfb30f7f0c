package api

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ryabkov/filegallery/internal/controller"
	"github.com/ryabkov/filegallery/internal/service"
	"github.com/ryabkov/filegallery/internal/util"
)

const (
	shutdownTimeout = 5 * time.Second
)

type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	tokenService    *service.TokenService
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	cleanupFuncs    []func()
}

func NewAPI(
	c *controller.Controller,
	tokenService *service.TokenService,
	sc *util.ServerConfig,
	l *zap.SugaredLogger,
	cleanupFuncs []func(),
) *API {
	e := echo.New()

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	return &API{
		server:          e,
		controller:      c,
		tokenService:    tokenService,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
		cleanupFuncs:    cleanupFuncs,
	}
}

func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))

	a.RegisterRoutes()

	a.ListenGracefulShutdown(ctx)
}

// RegisterRoutes wires the public gallery, the auth endpoints and the
// cookie-gated admin group.
func (a *API) RegisterRoutes() {
	g := a.server.Group("/api")

	g.GET("/ping", a.controller.CheckServer)

	auth := g.Group("/auth")
	auth.POST("/login", a.controller.Login)
	auth.POST("/refresh", a.controller.Refresh)
	auth.POST("/logout", a.controller.Logout)

	g.GET("/files", a.controller.ListFiles)
	g.GET("/files/:id", a.controller.GetFileContent)
	g.POST("/files/:id/vote", a.controller.VoteFile)
	g.POST("/files/:id/like", a.controller.LikeFile)
	g.POST("/files/:id/dislike", a.controller.DislikeFile)

	admin := g.Group("/admin", AccessAuthMiddleware(a.tokenService))
	admin.GET("/files", a.controller.ListAllFiles)
	admin.POST("/files/upload", a.controller.UploadFiles)
	admin.GET("/files/:id", a.controller.GetFileMetadata)
	admin.PATCH("/files/:id", a.controller.UpdateFile)
	admin.DELETE("/files/:id", a.controller.HideFile)
	admin.POST("/files/:id/restore", a.controller.RestoreFile)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("shutdown: %v", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	longShutdown := make(chan struct{}, 1)

	go func() {
		time.Sleep(a.gracefulTimeout)
		longShutdown <- struct{}{}
	}()

	select {
	case <-shutdownCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			a.log.Info("server shutdown completed")
		} else {
			a.log.Errorf("server shutdown: %v", ctx.Err())
		}
	case <-longShutdown:
		a.log.Infof("finished")
	}
}

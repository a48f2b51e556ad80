package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/home-inventory/internal/config"
	"github.com/shinyyama/home-inventory/internal/handler"
	appmw "github.com/shinyyama/home-inventory/internal/middleware"
	"github.com/shinyyama/home-inventory/internal/service"
	"github.com/shinyyama/home-inventory/internal/storage/memory"
)

// Deps are the collaborators the HTTP layer is built on.
type Deps struct {
	Items service.ItemService
	// Blobs is set when objects live in process; GET /blobs/* then serves them.
	Blobs *memory.Backend
	// Auth guards mutating routes when non-nil.
	Auth   *appmw.AuthMiddleware
	Logger *slog.Logger
	SHA    string
	Build  string
}

type Server struct {
	e *echo.Echo
}

func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOrigins),
	}))
	if cfg.MaxBodySize != "" {
		e.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	itemHandler := handler.NewItemHandler(deps.Items, logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    deps.SHA,
			"build_time": deps.Build,
		})
	})

	var guard []echo.MiddlewareFunc
	if deps.Auth != nil {
		guard = append(guard, deps.Auth.RequireAuth)
	}

	// Item routes answer under /api and at the top level alike.
	for _, g := range []*echo.Group{e.Group("/api"), e.Group("")} {
		g.GET("/items", itemHandler.List)
		g.GET("/items/:id", itemHandler.Get)
		g.POST("/items", itemHandler.Create, guard...)
		g.PATCH("/items/:id", itemHandler.Update, guard...)
		g.PUT("/items/:id", itemHandler.Update, guard...)
		g.DELETE("/items/:id", itemHandler.Delete, guard...)
	}

	if deps.Blobs != nil {
		e.GET("/blobs/*", handler.NewBlobHandler(deps.Blobs).Get)
	}

	return &Server{e: e}
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}

func allowOrigin(extra []string) func(origin string) (bool, error) {
	allowed := make(map[string]bool, len(extra))
	for _, o := range extra {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[strings.ToLower(o)] = true
		}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		return allowed[low], nil
	}
}

package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"creator-funnel/internal/dto"
	"creator-funnel/internal/handler"
	adminmw "creator-funnel/internal/middleware"
	"creator-funnel/internal/render"
	"creator-funnel/internal/service"
)

type Services struct {
	Creator      service.CreatorService
	Page         service.PageService
	Analytics    service.AnalyticsService
	Subscription service.SubscriptionService
}

type Options struct {
	BaseURL            string
	AdminJWTSecret     string
	SubscribeRateLimit float64
}

type Server struct {
	echo                *echo.Echo
	log                 *zap.Logger
	opts                Options
	creatorHandler      *handler.CreatorHandler
	landingPageHandler  *handler.LandingPageHandler
	analyticsHandler    *handler.AnalyticsHandler
	subscriptionHandler *handler.SubscriptionHandler
	pageHandler         *handler.PageHandler
}

func NewServer(services Services, opts Options, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Warn("http_request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("http_request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:                e,
		log:                 log,
		opts:                opts,
		creatorHandler:      handler.NewCreatorHandler(services.Creator),
		landingPageHandler:  handler.NewLandingPageHandler(services.Page, opts.BaseURL),
		analyticsHandler:    handler.NewAnalyticsHandler(services.Analytics),
		subscriptionHandler: handler.NewSubscriptionHandler(services.Subscription),
		pageHandler:         handler.NewPageHandler(services.Page, services.Analytics, log),
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.echo.GET("/page/:pageId", s.pageHandler.Show)

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, dto.Response{Success: true, Message: "ok"})
	})
	api.GET("/templates", s.pageHandler.Templates)

	// -------- public --------
	api.GET("/landing-pages", s.landingPageHandler.Get)
	api.POST("/landing-pages", s.landingPageHandler.Create)
	api.PUT("/landing-pages", s.landingPageHandler.Update)

	api.GET("/analytics", s.analyticsHandler.Get)
	api.POST("/analytics", s.analyticsHandler.TrackView)

	subscribe := api.Group("/subscribe")
	if s.opts.SubscribeRateLimit > 0 {
		subscribe.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.opts.SubscribeRateLimit))))
	}
	subscribe.GET("", s.subscriptionHandler.Info)
	subscribe.POST("", s.subscriptionHandler.Subscribe)

	// -------- provider callbacks --------
	api.POST("/webhooks/clubzila", s.subscriptionHandler.ClubzilaWebhook)

	// -------- admin --------
	admin := api.Group("/admin", adminmw.AdminAuth(s.opts.AdminJWTSecret))
	admin.POST("/creators", s.creatorHandler.Register)
	admin.GET("/creators", s.creatorHandler.List)
	admin.GET("/creators/:id", s.creatorHandler.Get)
	admin.PATCH("/creators/:id/status", s.creatorHandler.UpdateStatus)

	admin.POST("/landing-pages", s.landingPageHandler.AdminCreate)
	admin.GET("/landing-pages", s.landingPageHandler.AdminList)
	admin.POST("/landing-pages/:pageId/publish", s.landingPageHandler.Publish)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

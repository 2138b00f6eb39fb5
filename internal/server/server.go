package server

import (
	"payhere-integration-demo/internal/handler"
	"payhere-integration-demo/internal/middleware"
	"payhere-integration-demo/internal/repository"
	"payhere-integration-demo/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	echo           *echo.Echo
	payhereHandler *handler.PayhereHandler
	userHandler    *handler.UserHandler
	apiHandler     *handler.APIHandler
	apiKeyService  service.APIKeyService
	userService    service.UserService
}

type customValidator struct {
	validate *validator.Validate
}

func (v *customValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(
	payhereService service.PayhereService,
	apiKeyService service.APIKeyService,
	userService service.UserService,
	planRepo repository.PlanRepository,
	logger zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &customValidator{validate: validator.New()}

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			evt := logger.Info()
			if v.Error != nil {
				evt = logger.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:           e,
		payhereHandler: handler.NewPayhereHandler(payhereService, logger),
		userHandler:    handler.NewUserHandler(userService),
		apiHandler:     handler.NewAPIHandler(payhereService, planRepo),
		apiKeyService:  apiKeyService,
		userService:    userService,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- accounts --------
	e.POST("/register", s.userHandler.Register)
	e.POST("/login", s.userHandler.Login)

	// -------- checkout / payhere callbacks --------
	e.POST("/subscribe", s.payhereHandler.Subscribe)
	e.GET("/subscribe/return", s.payhereHandler.Return)
	e.GET("/subscribe/cancel", s.payhereHandler.Cancel)
	e.POST("/webhooks/payhere", s.payhereHandler.Notify)

	// -------- reads --------
	e.GET("/plans", s.apiHandler.ListPlans)
	e.GET("/subscriptions", s.apiHandler.ListSubscriptions, middleware.JWTAuth(s.userService))

	// -------- key-gated api --------
	e.GET("/v1/data", s.apiHandler.Data, middleware.APIKeyAuth(s.apiKeyService))
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

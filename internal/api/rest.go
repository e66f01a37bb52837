package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/hbomb79/mediaprobe/internal/api/auth"
	"github.com/hbomb79/mediaprobe/internal/api/extractions"
	"github.com/hbomb79/mediaprobe/internal/api/medias"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		HostAddr     string `toml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080" validate:"required,hostname_port"`
		JwtSecret    string `toml:"jwt_secret" env:"API_JWT_SECRET"`
		AssetsPrefix string `toml:"assets_prefix" env:"API_ASSETS_PREFIX" env-default:"/assets" validate:"startswith=/"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// extractionService represents a union of all the controller service requirements
	extractionService interface {
		medias.Service
		extractions.Service
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole responsbility
	// is to create the routes exposed, and to enforce authn + authz middleware where applicable.
	RestGateway struct {
		config               *RestConfig
		ec                   *echo.Echo
		mediaController      controller
		extractionController controller
	}
)

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the various controllers.
func NewRestGateway(config *RestConfig, service extractionService, store medias.Store) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true

	roleChecker := auth.NewJwtRoleChecker(config.JwtSecret)
	gateway := &RestGateway{
		config:               config,
		ec:                   ec,
		mediaController:      medias.New(store, service, config.AssetsPrefix, roleChecker.RequireRole(auth.SuperAdminRole)),
		extractionController: extractions.New(service),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Pre(middleware.AddTrailingSlash())

	gateway.mediaController.SetRoutes(ec.Group("/api/v1/media"))
	gateway.extractionController.SetRoutes(ec.Group("/api/v1/extractions"))

	return gateway
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	// Start echo router
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Emit(logger.NEW, "REST gateway listening on %s\n", gateway.config.HostAddr)
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

// ServeHTTP exposes the underlying router, primarily so the gateway can be
// exercised without binding a port.
func (gateway *RestGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gateway.ec.ServeHTTP(w, r)
}

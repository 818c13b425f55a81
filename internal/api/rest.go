package api

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Riptide/internal/api/crops"
	"github.com/hbomb79/Riptide/internal/api/downloads"
	"github.com/hbomb79/Riptide/internal/api/files"
	"github.com/hbomb79/Riptide/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		HostAddr string `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// mediaLibrary represents a union of the controllers' library
	// requirements; the files.Library service object satisfies all of them.
	mediaLibrary interface {
		downloads.Library
		files.Library
	}

	// The RestGateway is a thin wrapper around the Echo HTTP router. Its
	// sole responsibility is to create the routes Riptide exposes and
	// delegate them to the controllers.
	RestGateway struct {
		config              *RestConfig
		ec                  *echo.Echo
		downloadsController controller
		filesController     controller
		cropsController     controller
	}
)

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the various controllers.
func NewRestGateway(
	config *RestConfig,
	downloadService downloads.DownloadService,
	store downloads.Store,
	library mediaLibrary,
	processor crops.Processor,
) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true

	validate := validator.New()
	gateway := &RestGateway{
		config:              config,
		ec:                  ec,
		downloadsController: downloads.New(downloadService, store, library),
		filesController:     files.New(library),
		cropsController:     crops.New(validate, processor),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Pre(middleware.AddTrailingSlash())

	downloadGroup := ec.Group("/api/riptide/v1/downloads")
	gateway.downloadsController.SetRoutes(downloadGroup)

	fileGroup := ec.Group("/api/riptide/v1/files")
	gateway.filesController.SetRoutes(fileGroup)

	cropGroup := ec.Group("/api/riptide/v1/crops")
	gateway.cropsController.SetRoutes(cropGroup)

	return gateway
}

// Run starts the router, blocking until the provided context is cancelled
// or the router fails.
func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil {
			ctxCancel(err)
		}
	}()

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

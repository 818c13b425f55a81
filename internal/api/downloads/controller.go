package downloads

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hbomb79/Riptide/internal/fetch"
	"github.com/hbomb79/Riptide/internal/job"
	"github.com/labstack/echo/v4"
)

type (
	SubmitRequest struct {
		URL string `json:"url"`
	}

	// DownloadService accepts a URL submission and drives it through the
	// download state machine, either inline or in the background
	// depending on the configured execution mode.
	DownloadService interface {
		Submit(ctx context.Context, url string) (job.Download, error)
	}

	Store interface {
		Get(id string) (job.Download, error)
		All() []job.Download
		Remove(id string)
	}

	Library interface {
		CleanupAll() int
	}

	// Controller defines the routes for submitting downloads, polling
	// their state, clearing records and performing session cleanup.
	Controller struct {
		service DownloadService
		store   Store
		library Library
	}
)

func New(service DownloadService, store Store, library Library) *Controller {
	return &Controller{service: service, store: store, library: library}
}

// SetRoutes accepts the Echo group for the download endpoints and sets the
// routes on them.
func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/", controller.submit)
	eg.GET("/", controller.list)
	eg.GET("/:id/", controller.get)
	eg.DELETE("/:id/", controller.clear)
	eg.POST("/cleanup/", controller.cleanup)
}

// submit accepts a URL and routes it to the matching platform adapter. A
// URL from an unsupported domain is rejected before any download record
// exists.
func (controller *Controller) submit(ec echo.Context) error {
	var request SubmitRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("JSON body illegal: %v", err))
	}
	if request.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No URL provided")
	}

	download, err := controller.service.Submit(ec.Request().Context(), request.URL)
	if err != nil {
		if errors.Is(err, fetch.ErrUnsupportedDomain) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ec.JSON(http.StatusOK, NewDto(download))
}

// list returns all known downloads - represented as DTOs - from the
// underlying store.
func (controller *Controller) list(ec echo.Context) error {
	all := controller.store.All()
	dtos := make([]*DownloadDto, len(all))
	for k, v := range all {
		dtos[k] = NewDto(v)
	}

	return ec.JSON(http.StatusOK, dtos)
}

// get uses the 'id' path param from the context and retrieves the download
// from the underlying store.
func (controller *Controller) get(ec echo.Context) error {
	download, err := controller.store.Get(ec.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Job not found")
	}

	return ec.JSON(http.StatusOK, NewDto(download))
}

// clear removes the download record with the given ID. Clearing an absent
// record is not an error.
func (controller *Controller) clear(ec echo.Context) error {
	controller.store.Remove(ec.Param("id"))

	return ec.JSON(http.StatusOK, map[string]any{"success": true})
}

// cleanup deletes every file tracked for the current session, reporting
// how many were actually removed from disk.
func (controller *Controller) cleanup(ec echo.Context) error {
	count := controller.library.CleanupAll()

	return ec.JSON(http.StatusOK, map[string]any{"success": true, "count": count})
}

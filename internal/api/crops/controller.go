package crops

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Riptide/internal/ffmpeg"
	"github.com/hbomb79/Riptide/internal/files"
	"github.com/labstack/echo/v4"
)

type (
	CropRequest struct {
		Filename string `json:"filename" validate:"required"`
		X        *int   `json:"x" validate:"required,min=0"`
		Y        *int   `json:"y" validate:"required,min=0"`
		Width    *int   `json:"width" validate:"required,min=1"`
		Height   *int   `json:"height" validate:"required,min=1"`
	}

	// Processor produces a cropped derivative of a previously downloaded
	// file.
	Processor interface {
		Crop(ctx context.Context, filename string, x int, y int, width int, height int) (string, error)
	}

	// Controller defines the route for requesting crop derivatives.
	Controller struct {
		validate  *validator.Validate
		processor Processor
	}
)

func New(validate *validator.Validate, processor Processor) *Controller {
	return &Controller{validate: validate, processor: processor}
}

// SetRoutes accepts the Echo group for the crop endpoints and sets the
// routes on them.
func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/", controller.create)
}

// create validates the crop request and hands it to the processor. Status
// codes reflect cause: 400 bad input, 404 missing source, 500 processor
// failure, 501 processor unavailable.
func (controller *Controller) create(ec echo.Context) error {
	var request CropRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("JSON body illegal: %v", err))
	}
	if err := controller.validate.Struct(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	outputName, err := controller.processor.Crop(
		ec.Request().Context(),
		request.Filename,
		*request.X, *request.Y, *request.Width, *request.Height,
	)
	if err != nil {
		return processorError(err)
	}

	return ec.JSON(http.StatusOK, map[string]any{"success": true, "filename": outputName})
}

func processorError(err error) error {
	var procErr *ffmpeg.ProcessorError

	switch {
	case errors.Is(err, files.ErrUnsafeFilename), errors.Is(err, ffmpeg.ErrRectangleOutOfBounds):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, files.ErrFileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	case errors.Is(err, ffmpeg.ErrProcessorUnavailable):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	case errors.As(err, &procErr):
		return echo.NewHTTPError(http.StatusInternalServerError, procErr.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

package files

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	internalfiles "github.com/hbomb79/Riptide/internal/files"
	"github.com/labstack/echo/v4"
)

type (
	// Library is the retrieval/deletion surface over the shared download
	// directory. Filenames are caller supplied and validated before any
	// path join occurs.
	Library interface {
		Open(filename string) ([]byte, error)
		TakeAndDelete(filename string) ([]byte, error)
		List() []string
	}

	// Controller defines the routes for retrieving and deleting
	// previously downloaded files.
	Controller struct {
		library Library
	}
)

func New(library Library) *Controller {
	return &Controller{library: library}
}

// SetRoutes accepts the Echo group for the file endpoints and sets the
// routes on them.
func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.list)
	eg.GET("/:filename/", controller.get)
	eg.GET("/:filename/attachment/", controller.takeAndDelete)
}

// list returns the filenames tracked for the current session.
func (controller *Controller) list(ec echo.Context) error {
	return ec.JSON(http.StatusOK, controller.library.List())
}

// get serves the named file inline.
func (controller *Controller) get(ec echo.Context) error {
	filename := ec.Param("filename")
	content, err := controller.library.Open(filename)
	if err != nil {
		return libraryError(err)
	}

	ec.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return ec.Blob(http.StatusOK, contentTypeFor(filename), content)
}

// takeAndDelete serves the named file as an attachment, removing it from
// disk and from the session tracking set as a side effect. The removal is
// not rolled back if the response transmission later fails.
func (controller *Controller) takeAndDelete(ec echo.Context) error {
	filename := ec.Param("filename")
	content, err := controller.library.TakeAndDelete(filename)
	if err != nil {
		return libraryError(err)
	}

	ec.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ec.Blob(http.StatusOK, contentTypeFor(filename), content)
}

func libraryError(err error) error {
	switch {
	case errors.Is(err, internalfiles.ErrUnsafeFilename):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, internalfiles.ErrFileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func contentTypeFor(filename string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}

	return echo.MIMEOctetStream
}

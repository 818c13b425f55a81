package files_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	controller "github.com/hbomb79/Riptide/internal/api/files"
	internalfiles "github.com/hbomb79/Riptide/internal/files"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func newTestLibrary(t *testing.T, names ...string) *internalfiles.Library {
	ops := make([]fs.PathOp, 0, len(names))
	for _, name := range names {
		ops = append(ops, fs.WithFile(name, "content of "+name))
	}
	dir := fs.NewDir(t, "library", ops...)

	library, err := internalfiles.NewLibrary(dir.Path())
	require.NoError(t, err)
	for _, name := range names {
		library.Track(name)
	}

	return library
}

func setupGateway(library *internalfiles.Library) *echo.Echo {
	ec := echo.New()
	controller.New(library).SetRoutes(ec.Group("/files"))
	return ec
}

func Test_GetFile_ServesInline(t *testing.T) {
	library := newTestLibrary(t, "alice_20240101_1.mp4")
	ec := setupGateway(library)

	req := httptest.NewRequest(http.MethodGet, "/files/alice_20240101_1.mp4/", nil)
	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "content of alice_20240101_1.mp4", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "inline")

	// Plain retrieval must not delete or untrack.
	assert.True(t, library.Tracked("alice_20240101_1.mp4"))
}

func Test_GetFile_Missing(t *testing.T) {
	ec := setupGateway(newTestLibrary(t))

	req := httptest.NewRequest(http.MethodGet, "/files/missing.mp4/", nil)
	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_GetFile_TraversalRejected(t *testing.T) {
	ec := setupGateway(newTestLibrary(t))

	req := httptest.NewRequest(http.MethodGet, "/files/..hidden../", nil)
	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_TakeAndDelete_RemovesFileAfterServing(t *testing.T) {
	library := newTestLibrary(t, "alice_20240101_1.mp4")
	ec := setupGateway(library)

	req := httptest.NewRequest(http.MethodGet, "/files/alice_20240101_1.mp4/attachment/", nil)
	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "content of alice_20240101_1.mp4", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")

	assert.False(t, library.Tracked("alice_20240101_1.mp4"))

	// A subsequent plain fetch must report not-found.
	req = httptest.NewRequest(http.MethodGet, "/files/alice_20240101_1.mp4/", nil)
	rec = httptest.NewRecorder()
	ec.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_ListFiles(t *testing.T) {
	library := newTestLibrary(t, "a.mp4", "b.jpg")
	ec := setupGateway(library)

	req := httptest.NewRequest(http.MethodGet, "/files/", nil)
	rec := httptest.NewRecorder()
	ec.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["a.mp4","b.jpg"]`, rec.Body.String())
}

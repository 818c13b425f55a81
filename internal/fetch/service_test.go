package fetch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/hbomb79/Riptide/internal/fetch"
	"github.com/hbomb79/Riptide/internal/files"
	"github.com/hbomb79/Riptide/internal/job"
	"github.com/hbomb79/Riptide/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetMinLoggingLevel(logger.FATAL.Level())
}

type mockMediaExtractor struct {
	mock.Mock
}

func (m *mockMediaExtractor) Extract(ctx context.Context, url string, outputTemplate string) error {
	args := m.Called(url, outputTemplate)
	return args.Error(0)
}

type mockPostExtractor struct {
	mock.Mock
}

func (m *mockPostExtractor) ExtractPost(ctx context.Context, shortcode string, destDir string) (string, error) {
	args := m.Called(shortcode, destDir)
	return args.String(0), args.Error(1)
}

type fixture struct {
	service *fetch.Service
	store   *job.Store
	library *files.Library
	media   *mockMediaExtractor
	posts   *mockPostExtractor
}

func newFixture(t *testing.T, mode string) *fixture {
	library, err := files.NewLibrary(t.TempDir())
	require.NoError(t, err)

	store := job.NewStore()
	media := &mockMediaExtractor{}
	posts := &mockPostExtractor{}

	service, err := fetch.New(
		fetch.Config{Mode: mode, DownloadDirPath: library.Dir()},
		store,
		fetch.NewInstagramAdapter(library, posts),
		fetch.NewTwitterAdapter(library, media),
	)
	require.NoError(t, err)

	return &fixture{service: service, store: store, library: library, media: media, posts: posts}
}

// writeStagedFiles returns a mock.Run callback which drops the named files
// into the staging directory derived from the output template argument.
func writeStagedFiles(t *testing.T, names ...string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		stagingDir := filepath.Dir(args.String(1))
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(stagingDir, name), []byte("media"), 0o644))
		}
	}
}

// ctxAwareExtractor mimics the real gateways, which run the external tool
// under the provided context and surface its cancellation as an error.
type ctxAwareExtractor struct {
	staged string
}

func (e *ctxAwareExtractor) Extract(ctx context.Context, url string, outputTemplate string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(filepath.Dir(outputTemplate), e.staged), []byte("media"), 0o644)
}

func Test_Submit_UnsupportedDomain_CreatesNoJob(t *testing.T) {
	f := newFixture(t, "blocking")

	_, err := f.service.Submit(context.Background(), "https://example.com/watch?v=123")
	assert.ErrorIs(t, err, fetch.ErrUnsupportedDomain)
	assert.Empty(t, f.store.All(), "no download record should exist for an unsupported domain")
}

func Test_Submit_Twitter_CompletesWithRenamedFiles(t *testing.T) {
	f := newFixture(t, "blocking")

	url := "https://x.com/alice/status/123"
	stage := writeStagedFiles(t, "123.mp4")
	f.media.On("Extract", url, mock.Anything).
		Run(func(args mock.Arguments) {
			// The record must be marked downloading before the tool runs.
			all := f.store.All()
			require.Len(t, all, 1)
			assert.Equal(t, job.Downloading, all[0].Status)

			stage(args)
		}).
		Return(nil)

	download, err := f.service.Submit(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, job.Completed, download.Status)
	assert.Equal(t, "alice", download.Username)
	require.Len(t, download.Files, 1)
	assert.Regexp(t, regexp.MustCompile(`^alice_\d{8}_1\.mp4$`), download.Files[0].Filename)

	assert.True(t, f.library.Tracked(download.Files[0].Filename))
	content, err := f.library.Open(download.Files[0].Filename)
	require.NoError(t, err)
	assert.Equal(t, []byte("media"), content)
}

func Test_Submit_Twitter_ReservedSegmentUsesFallbackOwner(t *testing.T) {
	f := newFixture(t, "blocking")

	url := "https://twitter.com/i/status/9"
	f.media.On("Extract", url, mock.Anything).
		Run(writeStagedFiles(t, "9.webm")).
		Return(nil)

	download, err := f.service.Submit(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, job.Completed, download.Status)
	assert.Equal(t, "twitter_user", download.Username)
}

func Test_Submit_Twitter_ToolFailureFailsJob(t *testing.T) {
	f := newFixture(t, "blocking")

	url := "https://x.com/alice/status/123"
	f.media.On("Extract", url, mock.Anything).Return(errors.New("yt-dlp error: boom"))

	download, err := f.service.Submit(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, job.Failed, download.Status)
	assert.Contains(t, download.Error, "boom")
}

func Test_Submit_Twitter_NoMediaFailsJob(t *testing.T) {
	f := newFixture(t, "blocking")

	url := "https://x.com/alice/status/123"
	f.media.On("Extract", url, mock.Anything).Return(nil)

	download, err := f.service.Submit(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, job.Failed, download.Status)
	assert.Equal(t, fetch.ErrNoMediaFound.Error(), download.Error)
}

func Test_Submit_Instagram_UnrecognizedURLFailsWithoutExtraction(t *testing.T) {
	f := newFixture(t, "blocking")

	download, err := f.service.Submit(context.Background(), "https://instagram.com/stories/somebody")
	require.NoError(t, err)
	assert.Equal(t, job.Failed, download.Status)
	assert.Equal(t, fetch.ErrUnrecognizedURL.Error(), download.Error)

	f.posts.AssertNotCalled(t, "ExtractPost", mock.Anything, mock.Anything)
}

func Test_Submit_Instagram_MultipleFilesGetIncreasingIndices(t *testing.T) {
	f := newFixture(t, "blocking")

	f.posts.On("ExtractPost", "abc123", mock.Anything).
		Run(func(args mock.Arguments) {
			destDir := args.String(1)
			require.NoError(t, os.WriteFile(filepath.Join(destDir, "one.jpg"), []byte("1"), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(destDir, "two.mp4"), []byte("2"), 0o644))
		}).
		Return("bob", nil)

	download, err := f.service.Submit(context.Background(), "https://instagram.com/p/abc123")
	require.NoError(t, err)
	assert.Equal(t, job.Completed, download.Status)
	assert.Equal(t, "bob", download.Username)
	require.Len(t, download.Files, 2)

	names := []string{download.Files[0].Filename, download.Files[1].Filename}
	assert.NotEqual(t, names[0], names[1])
	assert.Regexp(t, regexp.MustCompile(`^bob_\d{8}_1\.`), names[0])
	assert.Regexp(t, regexp.MustCompile(`^bob_\d{8}_2\.`), names[1])
}

func Test_Submit_Instagram_MissingOwnerUsesPlaceholder(t *testing.T) {
	f := newFixture(t, "blocking")

	f.posts.On("ExtractPost", "reelid", mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(filepath.Join(args.String(1), "clip.mp4"), []byte("v"), 0o644))
		}).
		Return("", nil)

	download, err := f.service.Submit(context.Background(), "https://www.instagram.com/reel/reelid")
	require.NoError(t, err)
	assert.Equal(t, job.Completed, download.Status)
	assert.Equal(t, "instagram_user", download.Username)
}

func Test_Submit_BlockingMode_CallerCancellationDoesNotFailDownload(t *testing.T) {
	library, err := files.NewLibrary(t.TempDir())
	require.NoError(t, err)

	store := job.NewStore()
	service, err := fetch.New(
		fetch.Config{Mode: "blocking", DownloadDirPath: library.Dir()},
		store,
		fetch.NewTwitterAdapter(library, &ctxAwareExtractor{staged: "123.mp4"}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	download, err := service.Submit(ctx, "https://x.com/alice/status/123")
	require.NoError(t, err)
	assert.Equal(t, job.Completed, download.Status)
	assert.Empty(t, download.Error)
}

func Test_Submit_SameOwnerSameDayDoesNotOverwrite(t *testing.T) {
	f := newFixture(t, "blocking")

	url := "https://x.com/alice/status/123"
	f.media.On("Extract", url, mock.Anything).
		Run(writeStagedFiles(t, "123.mp4")).
		Return(nil)

	first, err := f.service.Submit(context.Background(), url)
	require.NoError(t, err)
	require.Len(t, first.Files, 1)

	second, err := f.service.Submit(context.Background(), url)
	require.NoError(t, err)
	require.Len(t, second.Files, 1)

	assert.NotEqual(t, first.Files[0].Filename, second.Files[0].Filename)
	assert.Regexp(t, regexp.MustCompile(`^alice_\d{8}_1\.mp4$`), first.Files[0].Filename)
	assert.Regexp(t, regexp.MustCompile(`^alice_\d{8}_2\.mp4$`), second.Files[0].Filename)

	for _, filename := range []string{first.Files[0].Filename, second.Files[0].Filename} {
		_, err := f.library.Open(filename)
		assert.NoError(t, err)
	}
}

func Test_Submit_OwnerWithParentSegmentsYieldsRetrievableFilename(t *testing.T) {
	f := newFixture(t, "blocking")

	f.posts.On("ExtractPost", "abc123", mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(filepath.Join(args.String(1), "one.jpg"), []byte("1"), 0o644))
		}).
		Return("a..b", nil)

	download, err := f.service.Submit(context.Background(), "https://instagram.com/p/abc123")
	require.NoError(t, err)
	assert.Equal(t, job.Completed, download.Status)
	require.Len(t, download.Files, 1)

	filename := download.Files[0].Filename
	assert.Regexp(t, regexp.MustCompile(`^a\.b_\d{8}_1\.jpg$`), filename)

	// The generated name must round-trip through library retrieval.
	content, err := f.library.Open(filename)
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), content)
}

func Test_Submit_ThreadedMode_ReturnsPendingThenCompletes(t *testing.T) {
	f := newFixture(t, "threaded")

	url := "https://x.com/alice/status/123"
	f.media.On("Extract", url, mock.Anything).
		Run(writeStagedFiles(t, "123.jpg")).
		Return(nil)

	download, err := f.service.Submit(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, job.Pending, download.Status)

	require.Eventually(t, func() bool {
		fetched, err := f.store.Get(download.ID)
		return err == nil && fetched.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)

	fetched, err := f.store.Get(download.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Completed, fetched.Status)
	assert.Equal(t, "alice", fetched.Username)
}

func Test_New_RejectsUnknownMode(t *testing.T) {
	store := job.NewStore()
	_, err := fetch.New(fetch.Config{Mode: "parallel"}, store)
	assert.Error(t, err)
}

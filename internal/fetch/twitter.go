package fetch

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hbomb79/Riptide/internal/files"
	"github.com/hbomb79/Riptide/pkg/logger"
)

// fallbackTwitterOwner is substituted when the URL path segment does not
// name a real profile (or none could be parsed at all).
const fallbackTwitterOwner = "twitter_user"

var (
	twitterLog = logger.Get("Twitter")

	twitterProfilePattern = regexp.MustCompile(`(?:twitter|x)\.com/([^/]+)`)

	// Path segments which look like a profile name but are platform
	// navigation keywords instead.
	reservedTwitterSegments = map[string]bool{
		"i":       true,
		"search":  true,
		"hashtag": true,
		"explore": true,
	}

	twitterMediaExtensions = []string{".jpg", ".mp4", ".webp", ".png", ".webm"}
)

type (
	// MediaExtractor performs a generic URL-driven media extraction,
	// writing its output according to the provided template. The template
	// embeds the platform-assigned media identifier and original extension.
	MediaExtractor interface {
		Extract(ctx context.Context, url string, outputTemplate string) error
	}

	// TwitterAdapter handles twitter.com and x.com URLs.
	TwitterAdapter struct {
		library   *files.Library
		extractor MediaExtractor
	}
)

func NewTwitterAdapter(library *files.Library, extractor MediaExtractor) *TwitterAdapter {
	return &TwitterAdapter{library: library, extractor: extractor}
}

func (adapter *TwitterAdapter) Name() string { return "twitter" }

func (adapter *TwitterAdapter) Matches(url string) bool {
	return strings.Contains(url, "twitter.com") || strings.Contains(url, "x.com")
}

// Fetch resolves the profile name from the URL path, runs the extraction
// tool into a per-download staging directory and imports any recognised
// media into the library. The staging directory is always discarded.
func (adapter *TwitterAdapter) Fetch(ctx context.Context, url string, onDownloading func()) (*Result, error) {
	username := parseTwitterUsername(url)
	twitterLog.Emit(logger.INFO, "Twitter username: %s\n", username)

	stagingDir, err := newStagingDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(stagingDir)

	outputTemplate := filepath.Join(stagingDir, "%(id)s.%(ext)s")

	onDownloading()
	if err := adapter.extractor.Extract(ctx, url, outputTemplate); err != nil {
		return nil, err
	}

	stagedPaths, err := collectMedia(stagingDir, twitterMediaExtensions)
	if err != nil {
		return nil, err
	}
	if len(stagedPaths) == 0 {
		twitterLog.Emit(logger.ERROR, "No media files downloaded from Twitter URL '%s'\n", url)
		return nil, ErrNoMediaFound
	}

	refs, err := importIntoLibrary(adapter.library, username, stagedPaths)
	if err != nil {
		return nil, err
	}

	twitterLog.Emit(logger.SUCCESS, "Imported %d file(s) from Twitter post by '%s'\n", len(refs), username)
	return &Result{Files: refs, Username: username}, nil
}

func parseTwitterUsername(url string) string {
	groups := twitterProfilePattern.FindStringSubmatch(url)
	if groups == nil {
		return fallbackTwitterOwner
	}

	username := groups[1]
	if reservedTwitterSegments[username] {
		return fallbackTwitterOwner
	}

	return username
}

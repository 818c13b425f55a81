package fetch

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/hbomb79/Riptide/internal/files"
	"github.com/hbomb79/Riptide/pkg/logger"
)

// fallbackInstagramOwner is used when the extraction tool cannot resolve
// the post author's account name.
const fallbackInstagramOwner = "instagram_user"

var (
	instagramLog = logger.Get("Instagram")

	instagramPostPattern = regexp.MustCompile(`instagram\.com/p/([^/]+)`)
	instagramReelPattern = regexp.MustCompile(`instagram\.com/reel/([^/]+)`)

	instagramMediaExtensions = []string{".jpg", ".mp4", ".webp"}
)

type (
	// PostExtractor fetches an Instagram post's media and its author's
	// account name into the provided destination directory. An empty owner
	// with a nil error means the tool could not resolve the author.
	PostExtractor interface {
		ExtractPost(ctx context.Context, shortcode string, destDir string) (owner string, err error)
	}

	// InstagramAdapter handles post and reel URLs for instagram.com.
	InstagramAdapter struct {
		library   *files.Library
		extractor PostExtractor
	}
)

func NewInstagramAdapter(library *files.Library, extractor PostExtractor) *InstagramAdapter {
	return &InstagramAdapter{library: library, extractor: extractor}
}

func (adapter *InstagramAdapter) Name() string { return "instagram" }

func (adapter *InstagramAdapter) Matches(url string) bool {
	return strings.Contains(url, "instagram.com")
}

// Fetch extracts the post identified by the URL into a per-download
// staging directory, then imports any recognised media into the library.
// The staging directory is discarded on every path that created one.
func (adapter *InstagramAdapter) Fetch(ctx context.Context, url string, onDownloading func()) (*Result, error) {
	shortcode := parseShortcode(url)
	if shortcode == "" {
		instagramLog.Emit(logger.ERROR, "Could not extract post ID from Instagram URL '%s'\n", url)
		return nil, ErrUnrecognizedURL
	}
	instagramLog.Emit(logger.INFO, "Instagram post ID: %s\n", shortcode)

	stagingDir, err := newStagingDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(stagingDir)

	onDownloading()
	owner, err := adapter.extractor.ExtractPost(ctx, shortcode, stagingDir)
	if err != nil {
		return nil, err
	}

	stagedPaths, err := collectMedia(stagingDir, instagramMediaExtensions)
	if err != nil {
		return nil, err
	}
	if len(stagedPaths) == 0 {
		instagramLog.Emit(logger.ERROR, "No media files downloaded from Instagram post %s\n", shortcode)
		return nil, ErrNoMediaFound
	}

	if owner == "" {
		owner = fallbackInstagramOwner
	}

	refs, err := importIntoLibrary(adapter.library, owner, stagedPaths)
	if err != nil {
		return nil, err
	}

	instagramLog.Emit(logger.SUCCESS, "Imported %d file(s) from Instagram post %s by '%s'\n", len(refs), shortcode, owner)
	return &Result{Files: refs, Username: owner}, nil
}

func parseShortcode(url string) string {
	for _, pattern := range []*regexp.Regexp{instagramPostPattern, instagramReelPattern} {
		if groups := pattern.FindStringSubmatch(url); groups != nil {
			return strings.TrimRight(groups[1], "/")
		}
	}

	return ""
}

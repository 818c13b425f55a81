package instaloader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hbomb79/Riptide/pkg/logger"
)

var log = logger.Get("Instaloader")

// ownerSeparator is embedded in the filename pattern handed to the tool so
// the post author's account name can be recovered from the artifacts it
// writes. Triple underscore keeps it unambiguous against account names
// which legally contain single underscores.
const ownerSeparator = "___"

// Extractor shells out to the instaloader binary to fetch a single post's
// media by shortcode.
type Extractor struct {
	binaryPath string
}

func New(binaryPath string) *Extractor {
	if binaryPath == "" {
		binaryPath = "instaloader"
	}

	return &Extractor{binaryPath: binaryPath}
}

// ExtractPost downloads the post identified by shortcode into destDir and
// returns the author's account name. An empty owner with a nil error means
// the name could not be recovered from the tool's output files.
func (extractor *Extractor) ExtractPost(ctx context.Context, shortcode string, destDir string) (string, error) {
	args := []string{
		"--quiet",
		"--no-video-thumbnails",
		"--no-geotags",
		"--no-captions",
		"--no-metadata-json",
		"--no-compress-json",
		"--dirname-pattern", destDir,
		"--filename-pattern", "{profile}" + ownerSeparator + "{shortcode}",
		"--", "-" + shortcode,
	}

	log.Emit(logger.DEBUG, "Running %s %v\n", extractor.binaryPath, args)
	cmd := exec.CommandContext(ctx, extractor.binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("instaloader error: %s", stderr.String())
	}

	return ownerFromArtifacts(destDir), nil
}

// ownerFromArtifacts recovers the account name embedded in the filename
// pattern of the first artifact found in the destination directory.
func ownerFromArtifacts(destDir string) string {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if owner, _, found := strings.Cut(stem, ownerSeparator); found && owner != "" {
			return owner
		}
	}

	return ""
}

package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/hbomb79/Riptide/pkg/logger"
)

var log = logger.Get("YtDlp")

// Extractor shells out to the yt-dlp binary to perform generic URL-driven
// media extraction. When an ffmpeg binary location is provided it is passed
// through so yt-dlp can merge separate audio/video streams.
type Extractor struct {
	binaryPath string
	ffmpegPath string
}

func New(binaryPath string, ffmpegPath string) *Extractor {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}

	return &Extractor{binaryPath: binaryPath, ffmpegPath: ffmpegPath}
}

// Extract downloads the media referenced by the URL, writing output files
// according to the provided template. A non-zero exit from the tool is
// surfaced as an error carrying its stderr output.
func (extractor *Extractor) Extract(ctx context.Context, url string, outputTemplate string) error {
	args := extractor.args(url, outputTemplate)
	log.Emit(logger.DEBUG, "Running %s %v\n", extractor.binaryPath, args)
	cmd := exec.CommandContext(ctx, extractor.binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp error: %s", stderr.String())
	}

	return nil
}

// args builds the tool's command line. The URL is always the final
// argument, after any option flags.
func (extractor *Extractor) args(url string, outputTemplate string) []string {
	args := []string{
		"--no-warnings",
		"--no-progress",
		"--no-playlist",
		"-o", outputTemplate,
	}
	if extractor.ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", extractor.ffmpegPath)
	}

	return append(args, url)
}

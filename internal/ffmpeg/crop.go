package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hbomb79/Riptide/internal/files"
	"github.com/hbomb79/Riptide/pkg/logger"
)

var (
	log = logger.Get("CropProc")

	// ErrProcessorUnavailable indicates no usable ffmpeg binary exists on
	// the host (neither configured nor found on the PATH).
	ErrProcessorUnavailable = errors.New("no ffmpeg binary is available on this host")

	// ErrRectangleOutOfBounds indicates the requested crop rectangle
	// exceeds the dimensions of the source video stream.
	ErrRectangleOutOfBounds = errors.New("crop rectangle exceeds the bounds of the source video")
)

// ProcessorError carries the diagnostic output of a failed ffmpeg run.
type ProcessorError struct {
	Output string
}

func (err *ProcessorError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s", err.Output)
}

// CropProcessor produces cropped derivatives of files already present in
// the library, re-encoding the video stream and copying the audio stream
// unchanged.
type CropProcessor struct {
	config    Config
	library   *files.Library
	commander Commander
}

func NewCropProcessor(config Config, library *files.Library, commander Commander) *CropProcessor {
	return &CropProcessor{config: config, library: library, commander: commander}
}

// Crop applies the axis-aligned rectangle (x, y, width, height) to the
// named source file, writing `{stem}_cropped_{unix}{ext}` into the library
// and tracking it. The ffmpeg binary is not invoked when the source file is
// absent or no binary is available.
func (processor *CropProcessor) Crop(ctx context.Context, filename string, x int, y int, width int, height int) (string, error) {
	sourcePath, err := processor.library.Resolve(filename)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(sourcePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", files.ErrFileNotFound
		}

		return "", fmt.Errorf("failed to access '%s': %w", filename, err)
	}

	binaryPath, err := processor.locateFfmpeg()
	if err != nil {
		return "", err
	}

	if err := processor.checkBounds(sourcePath, x, y, width, height); err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	outputName := fmt.Sprintf("%s_cropped_%d%s", stem, time.Now().Unix(), ext)
	outputPath := filepath.Join(processor.library.Dir(), outputName)

	args := []string{
		"-i", sourcePath,
		"-filter:v", fmt.Sprintf("crop=%d:%d:%d:%d", width, height, x, y),
		"-c:a", "copy",
		"-y", outputPath,
	}

	log.Emit(logger.NEW, "Cropping '%s' -> '%s' (rect %dx%d at %d,%d)\n", filename, outputName, width, height, x, y)
	if diagnostics, err := processor.commander.Run(ctx, binaryPath, args...); err != nil {
		return "", &ProcessorError{Output: string(diagnostics)}
	}

	processor.library.Track(outputName)
	return outputName, nil
}

func (processor *CropProcessor) locateFfmpeg() (string, error) {
	if processor.config.FfmpegBinaryPath != "" {
		if _, err := os.Stat(processor.config.FfmpegBinaryPath); err != nil {
			return "", ErrProcessorUnavailable
		}

		return processor.config.FfmpegBinaryPath, nil
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", ErrProcessorUnavailable
	}

	return path, nil
}

// checkBounds probes the source and rejects rectangles exceeding the video
// stream's dimensions. A failed probe is not fatal; ffmpeg itself will
// reject an illegal crop at run time.
func (processor *CropProcessor) checkBounds(sourcePath string, x int, y int, width int, height int) error {
	if !processor.probeAvailable() {
		return nil
	}

	metadata, err := ProbeFile(processor.config, sourcePath)
	if err != nil {
		log.Emit(logger.DEBUG, "Probe of '%s' failed (%v), skipping bounds validation\n", sourcePath, err)
		return nil
	}

	for _, stream := range metadata.GetStreams() {
		if stream.GetWidth() <= 0 || stream.GetHeight() <= 0 {
			continue
		}

		if x+width > stream.GetWidth() || y+height > stream.GetHeight() {
			return ErrRectangleOutOfBounds
		}

		return nil
	}

	return nil
}

func (processor *CropProcessor) probeAvailable() bool {
	if processor.config.FfprobeBinaryPath != "" {
		_, err := os.Stat(processor.config.FfprobeBinaryPath)
		return err == nil
	}

	_, err := exec.LookPath("ffprobe")
	return err == nil
}

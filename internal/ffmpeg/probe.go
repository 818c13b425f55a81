package ffmpeg

import (
	"fmt"

	"github.com/floostack/transcoder"
	"github.com/floostack/transcoder/ffmpeg"
)

// ProbeFile extracts stream metadata for the file at the given path using
// ffprobe.
func ProbeFile(config Config, path string) (transcoder.Metadata, error) {
	cfg := ffmpeg.Config{
		FfmpegBinPath:  config.FfmpegBinaryPath,
		FfprobeBinPath: config.FfprobeBinaryPath,
	}

	metadata, err := ffmpeg.New(&cfg).Input(path).GetMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to extract file metadata information using ffprobe: %s", err.Error())
	}

	return metadata, nil
}

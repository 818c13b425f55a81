package ffmpeg

// Config holds the locations of the ffmpeg/ffprobe binaries on the host.
// When a path is left empty the binary is looked up on the PATH instead;
// if neither yields a usable binary the crop processor reports itself
// unavailable.
type Config struct {
	FfmpegBinaryPath  string `yaml:"ffmpeg_binary" env:"FFMPEG_BINARY_PATH"`
	FfprobeBinaryPath string `yaml:"ffprobe_binary" env:"FFPROBE_BINARY_PATH"`
}

package fetch

import "fmt"

type Mode int

const (
	// ThreadedMode dispatches each submission onto its own goroutine; the
	// submitting caller receives a pending download and polls for its
	// terminal state.
	ThreadedMode Mode = iota

	// BlockingMode runs the extraction on the submitting caller's
	// goroutine, returning only once the download is terminal.
	BlockingMode
)

// Config controls the download service. The execution mode is a deployment
// choice, not a per-request one; the observable download state machine is
// identical in both modes.
type Config struct {
	Mode                  string `yaml:"mode" env:"DOWNLOAD_MODE" env-default:"threaded"`
	DownloadDirPath       string `yaml:"download_dir" env:"DOWNLOAD_DIR" env-default:"/tmp/downloads"`
	YtDlpBinaryPath       string `yaml:"ytdlp_binary" env:"YTDLP_BINARY_PATH" env-default:"yt-dlp"`
	InstaloaderBinaryPath string `yaml:"instaloader_binary" env:"INSTALOADER_BINARY_PATH" env-default:"instaloader"`
}

// ExecutionMode parses the configured mode string.
func (config *Config) ExecutionMode() (Mode, error) {
	switch config.Mode {
	case "", "threaded":
		return ThreadedMode, nil
	case "blocking":
		return BlockingMode, nil
	}

	return ThreadedMode, fmt.Errorf("download mode '%s' is not recognised (want 'threaded' or 'blocking')", config.Mode)
}

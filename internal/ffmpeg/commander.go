package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
)

type (
	// Commander is the narrow gateway through which the crop processor
	// spawns the ffmpeg binary. The returned bytes are the process's
	// stderr output, which carries ffmpeg's diagnostics on failure.
	Commander interface {
		Run(ctx context.Context, binaryPath string, args ...string) ([]byte, error)
	}

	execCommander struct{}
)

// NewExecCommander returns a Commander which runs the binary as a child
// process of this one.
func NewExecCommander() Commander { return &execCommander{} }

func (*execCommander) Run(ctx context.Context, binaryPath string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.Bytes(), err
}

package cli

import (
	"io"
	"os"
	"time"
)

// DefaultFrameDelay paces animated runs on an interactive terminal.
const DefaultFrameDelay = 40 * time.Millisecond

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Dir     string
	Machine string // path to a description file, or a machine name inside Dir
	Input   string

	NoAnimation bool
	FrameDelay  time.Duration

	// MaxSteps overrides the runner budget when non-zero. Negative disables it.
	MaxSteps int
	Strict   bool
	Store    string
	JSON     bool
	LogLevel string

	Stdout io.Writer
	Stderr io.Writer
}

func (o RunOptions) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o RunOptions) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

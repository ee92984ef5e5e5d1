// Package trim implements the uploader-side duration enforcement workflow:
// probe the selected clip, and when it runs over the 5-second limit, cut an
// exact 5-second window out of it before upload. The workflow is an explicit
// state machine (Session) driving a dual-strategy trimmer.
package trim

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ClipLength is the fixed length of an accepted clip.
const ClipLength = 5 * time.Second

// Prober reports the duration of a media file.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// FFprobe probes media files with the ffprobe binary.
type FFprobe struct {
	// Bin overrides the ffprobe binary path. Empty means "ffprobe" on PATH.
	Bin string
}

func (p *FFprobe) bin() string {
	if p.Bin != "" {
		return p.Bin
	}
	return "ffprobe"
}

// ProbeDuration returns the container duration of the file at path.
func (p *FFprobe) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, p.bin(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: bad duration %q: %w", path, strings.TrimSpace(string(out)), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

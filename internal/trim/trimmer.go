package trim

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultFastPathTimeout bounds the stream-copy attempt. If it hasn't
// finished by then it is cancelled and the re-encode fallback starts; the
// cancelled process is killed, never left running.
const DefaultFastPathTimeout = 10 * time.Second

// Window is the 5-second sub-interval [Start, Start+ClipLength] selected
// from a longer source.
type Window struct {
	Start time.Duration
}

// End returns the exclusive end of the window.
func (w Window) End() time.Duration {
	return w.Start + ClipLength
}

// Validate checks the window fits inside a source of the given total
// duration: Start must lie in [0, total-ClipLength].
func (w Window) Validate(total time.Duration) error {
	if w.Start < 0 {
		return fmt.Errorf("window start %s is negative", w.Start)
	}
	if w.Start > total-ClipLength {
		return fmt.Errorf("window start %s leaves less than %s of source (total %s)", w.Start, ClipLength, total)
	}
	return nil
}

// Progress is a single progress report from a trim strategy.
type Progress struct {
	Percent int
	Phase   string
}

// ProgressFunc receives progress reports. Reports are monotonic: Percent
// never decreases across strategies, so a UI can drive a single bar.
type ProgressFunc func(Progress)

// RetryableError marks a trim failure the user can retry by re-selecting
// the window; the source file selection stays intact.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("trim failed (retryable): %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Strategy cuts the window from src into dst.
type Strategy interface {
	Name() string
	Cut(ctx context.Context, src, dst string, w Window, report ProgressFunc) error
}

// Trimmer runs its strategies in order until one succeeds. The first
// (fast-path) strategy is bounded by FastPathTimeout.
type Trimmer struct {
	Strategies      []Strategy
	FastPathTimeout time.Duration
}

// NewTrimmer returns the default dual-strategy trimmer: ffmpeg stream-copy
// first (no re-encode, fast but keyframe-imprecise), then an ultrafast
// re-encode.
func NewTrimmer(ffmpegBin string) *Trimmer {
	return &Trimmer{
		Strategies: []Strategy{
			&StreamCopyStrategy{Bin: ffmpegBin},
			&ReencodeStrategy{Bin: ffmpegBin},
		},
		FastPathTimeout: DefaultFastPathTimeout,
	}
}

// Trim cuts the window from src into dst, trying each strategy in order.
// Returns a *RetryableError when every strategy fails.
func (t *Trimmer) Trim(ctx context.Context, src, dst string, w Window, report ProgressFunc) error {
	if report == nil {
		report = func(Progress) {}
	}
	mono := monotonic(report)

	var lastErr error
	for i, s := range t.Strategies {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if i == 0 && t.FastPathTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, t.FastPathTimeout)
		}

		mono(Progress{Percent: 0, Phase: "starting " + s.Name()})
		err := s.Cut(attemptCtx, src, dst, w, mono)
		cancel()

		if err == nil {
			mono(Progress{Percent: 100, Phase: s.Name() + " complete"})
			return nil
		}
		lastErr = err

		// The parent context going away means the caller gave up, not that
		// the strategy failed.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return &RetryableError{Err: lastErr}
}

// monotonic wraps a ProgressFunc so reported percentages never go backwards
// when the fallback strategy restarts from zero.
func monotonic(report ProgressFunc) ProgressFunc {
	best := 0
	return func(p Progress) {
		if p.Percent > 100 {
			p.Percent = 100
		}
		if p.Percent < best {
			p.Percent = best
		} else {
			best = p.Percent
		}
		report(p)
	}
}

// StreamCopyStrategy repackages the window without re-encoding. Fast, but
// cut points snap to keyframes.
type StreamCopyStrategy struct {
	Bin string
}

func (s *StreamCopyStrategy) Name() string { return "stream-copy" }

func (s *StreamCopyStrategy) Cut(ctx context.Context, src, dst string, w Window, report ProgressFunc) error {
	args := []string{
		"-y",
		"-ss", ffmpegTime(w.Start),
		"-i", src,
		"-t", ffmpegTime(ClipLength),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-progress", "pipe:1",
		dst,
	}
	return runFFmpeg(ctx, ffmpegBin(s.Bin), args, "copying stream", report)
}

// ReencodeStrategy re-encodes the window with a fast preset. Slower than
// stream copy but frame-accurate and always available.
type ReencodeStrategy struct {
	Bin string
}

func (s *ReencodeStrategy) Name() string { return "re-encode" }

func (s *ReencodeStrategy) Cut(ctx context.Context, src, dst string, w Window, report ProgressFunc) error {
	args := []string{
		"-y",
		"-ss", ffmpegTime(w.Start),
		"-i", src,
		"-t", ffmpegTime(ClipLength),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-c:a", "aac",
		"-progress", "pipe:1",
		dst,
	}
	return runFFmpeg(ctx, ffmpegBin(s.Bin), args, "re-encoding", report)
}

func ffmpegBin(bin string) string {
	if bin != "" {
		return bin
	}
	return "ffmpeg"
}

// ffmpegTime formats a duration as seconds with millisecond precision.
func ffmpegTime(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// runFFmpeg executes ffmpeg and converts its -progress key=value stream on
// stdout into percentage reports against the fixed clip length.
func runFFmpeg(ctx context.Context, bin string, args []string, phase string, report ProgressFunc) error {
	cmd := exec.CommandContext(ctx, bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", bin, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		// ffmpeg reports out_time_ms in microseconds.
		if v, ok := strings.CutPrefix(line, "out_time_ms="); ok {
			us, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				continue
			}
			pct := int(time.Duration(us) * time.Microsecond * 100 / ClipLength)
			report(Progress{Percent: pct, Phase: phase})
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", bin, ctx.Err())
		}
		return fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

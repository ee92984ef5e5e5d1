// trimtool cuts a 5-second window out of a longer clip, the same workflow
// the uploader runs before submitting: probe, pick a window, stream-copy
// with a re-encode fallback.
//
// Usage:
//
//	trimtool -in long.mp4 -out clip.mp4 -start 2.0
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/MdAmzadAli/skillArena/internal/trim"
)

func main() {
	in := flag.String("in", "", "source video file")
	out := flag.String("out", "", "output file for the trimmed clip")
	start := flag.Float64("start", 0, "window start offset in seconds")
	timeout := flag.Duration("timeout", trim.DefaultFastPathTimeout, "stream-copy attempt timeout")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*in, *out, *start, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "trimtool:", err)
		os.Exit(1)
	}
}

func run(in, out string, startSec float64, timeout time.Duration) error {
	ctx := context.Background()
	session := trim.NewSession()

	if err := session.SelectFile(ctx, &trim.FFprobe{}, in); err != nil {
		return err
	}
	fmt.Printf("source duration: %s\n", session.Duration())

	if session.State() == trim.StateDurationOk {
		fmt.Println("already within the 5-second limit, nothing to trim")
		return nil
	}

	window := trim.Window{Start: time.Duration(startSec * float64(time.Second))}
	if err := session.SelectWindow(window); err != nil {
		return err
	}
	fmt.Printf("trimming window [%s, %s]\n", window.Start, window.End())

	trimmer := trim.NewTrimmer("")
	trimmer.FastPathTimeout = timeout

	lastPct := -1
	err := session.Trim(ctx, trimmer, out, func(p trim.Progress) {
		if p.Percent != lastPct {
			lastPct = p.Percent
			fmt.Printf("\r%3d%% %-30s", p.Percent, p.Phase)
		}
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s (%s)\n", out, session.Duration())
	return nil
}

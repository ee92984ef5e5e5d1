package trim

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State names a position in the trim workflow.
type State string

const (
	StateIdle          State = "idle"
	StateFileSelected  State = "file_selected"
	StateDurationOk    State = "duration_ok"
	StateNeedsTrim     State = "needs_trim"
	StateTrimming      State = "trimming"
	StateTrimmed       State = "trimmed"
	StateReadyToSubmit State = "ready_to_submit"
)

var (
	// ErrTrimInFlight is returned when an action conflicts with a running
	// trim. Exactly one trim may be in flight; file re-selection and submit
	// are refused while it runs.
	ErrTrimInFlight = errors.New("a trim is already in progress")
	// ErrNotReady is returned by Submit checks before all requirements hold.
	ErrNotReady = errors.New("submission requirements not met")
)

// Session is the finite-state machine over one selected source file:
//
//	Idle → FileSelected → {DurationOk | NeedsTrim} → Trimming →
//	Trimmed → ReadyToSubmit
//
// Sessions are single-user and cooperative: callers drive transitions from
// one goroutine at a time.
type Session struct {
	state      State
	sourcePath string
	filePath   string // current working file (trim output replaces source)
	duration   time.Duration
	window     Window
	windowSet  bool

	category      string
	termsAccepted bool
}

// NewSession starts in Idle.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// FilePath returns the current working file: the original selection, or the
// trimmed output after a successful trim.
func (s *Session) FilePath() string {
	return s.filePath
}

// Duration returns the working file's duration as currently known.
func (s *Session) Duration() time.Duration {
	return s.duration
}

// SelectFile probes the chosen file and moves to DurationOk or NeedsTrim.
// Re-selection is allowed from any state except Trimming and resets the
// window, category and terms flags are kept.
func (s *Session) SelectFile(ctx context.Context, prober Prober, path string) error {
	if s.state == StateTrimming {
		return ErrTrimInFlight
	}

	s.state = StateFileSelected
	s.sourcePath = path
	s.filePath = path
	s.windowSet = false

	d, err := prober.ProbeDuration(ctx, path)
	if err != nil {
		s.state = StateIdle
		s.sourcePath = ""
		s.filePath = ""
		return err
	}
	s.duration = d

	if d <= ClipLength {
		s.state = StateDurationOk
		s.refreshReady()
	} else {
		s.state = StateNeedsTrim
	}
	return nil
}

// SelectWindow records the trim window. Only valid in NeedsTrim (including
// after a failed trim, which returns there).
func (s *Session) SelectWindow(w Window) error {
	if s.state != StateNeedsTrim {
		return fmt.Errorf("cannot select a window in state %s", s.state)
	}
	if err := w.Validate(s.duration); err != nil {
		return err
	}
	s.window = w
	s.windowSet = true
	return nil
}

// Trim cuts the selected window into dst. On success the output replaces
// the working file and its duration is exactly the clip length — no
// re-probe. On failure the session returns to NeedsTrim and the error is
// retryable.
func (s *Session) Trim(ctx context.Context, trimmer *Trimmer, dst string, report ProgressFunc) error {
	if s.state == StateTrimming {
		return ErrTrimInFlight
	}
	if s.state != StateNeedsTrim {
		return fmt.Errorf("cannot trim in state %s", s.state)
	}
	if !s.windowSet {
		return errors.New("no trim window selected")
	}

	s.state = StateTrimming
	err := trimmer.Trim(ctx, s.sourcePath, dst, s.window, report)
	if err != nil {
		// Source selection survives; the user re-picks the window and retries.
		s.state = StateNeedsTrim
		return err
	}

	s.filePath = dst
	s.duration = ClipLength
	s.state = StateTrimmed
	// Category and terms may have been set while the clip still needed
	// trimming; promote now that the duration requirement holds.
	s.refreshReady()
	return nil
}

// SetCategory records the required skill category.
func (s *Session) SetCategory(category string) {
	s.category = category
	s.refreshReady()
}

// AcceptTerms records the explicit terms-acceptance flag.
func (s *Session) AcceptTerms(accepted bool) {
	s.termsAccepted = accepted
	s.refreshReady()
}

// refreshReady promotes DurationOk/Trimmed to ReadyToSubmit once all
// submission requirements hold, and demotes back when one is cleared.
func (s *Session) refreshReady() {
	switch s.state {
	case StateDurationOk, StateTrimmed:
		if s.CheckReady() == nil {
			s.state = StateReadyToSubmit
		}
	case StateReadyToSubmit:
		if s.CheckReady() != nil {
			if s.duration == ClipLength && s.filePath != s.sourcePath {
				s.state = StateTrimmed
			} else {
				s.state = StateDurationOk
			}
		}
	}
}

// CheckReady reports why the session cannot be submitted yet, or nil when
// it can: file present, duration within the limit, category chosen, terms
// accepted.
func (s *Session) CheckReady() error {
	if s.state == StateTrimming {
		return ErrTrimInFlight
	}
	if s.filePath == "" {
		return fmt.Errorf("%w: no file selected", ErrNotReady)
	}
	if s.duration <= 0 || s.duration > ClipLength {
		return fmt.Errorf("%w: clip is longer than %s", ErrNotReady, ClipLength)
	}
	if s.category == "" {
		return fmt.Errorf("%w: no category selected", ErrNotReady)
	}
	if !s.termsAccepted {
		return fmt.Errorf("%w: terms not accepted", ErrNotReady)
	}
	return nil
}

package trim

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeProber returns a fixed duration.
type fakeProber struct {
	duration time.Duration
	err      error
}

func (p *fakeProber) ProbeDuration(context.Context, string) (time.Duration, error) {
	return p.duration, p.err
}

// fakeStrategy scripts a strategy outcome for trimmer tests.
type fakeStrategy struct {
	name    string
	err     error
	block   bool // run until the context is cancelled
	reports []int
	calls   int
}

func (s *fakeStrategy) Name() string { return s.name }

func (s *fakeStrategy) Cut(ctx context.Context, _, _ string, _ Window, report ProgressFunc) error {
	s.calls++
	for _, pct := range s.reports {
		report(Progress{Percent: pct, Phase: s.name})
	}
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func TestSelectFile_ShortClipIsDurationOk(t *testing.T) {
	s := NewSession()
	if s.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", s.State())
	}

	err := s.SelectFile(context.Background(), &fakeProber{duration: 4 * time.Second}, "short.mp4")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.State() != StateDurationOk {
		t.Errorf("state = %s, want duration_ok", s.State())
	}
	if s.Duration() != 4*time.Second {
		t.Errorf("duration = %s, want 4s", s.Duration())
	}
}

func TestSelectFile_LongClipNeedsTrim(t *testing.T) {
	s := NewSession()
	err := s.SelectFile(context.Background(), &fakeProber{duration: 12 * time.Second}, "long.mp4")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.State() != StateNeedsTrim {
		t.Errorf("state = %s, want needs_trim", s.State())
	}
}

func TestSelectFile_ExactlyFiveSecondsIsOk(t *testing.T) {
	s := NewSession()
	if err := s.SelectFile(context.Background(), &fakeProber{duration: ClipLength}, "exact.mp4"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.State() != StateDurationOk {
		t.Errorf("state = %s, want duration_ok", s.State())
	}
}

func TestSelectFile_ProbeErrorReturnsToIdle(t *testing.T) {
	s := NewSession()
	err := s.SelectFile(context.Background(), &fakeProber{err: errors.New("corrupt file")}, "bad.mp4")
	if err == nil {
		t.Fatal("expected probe error")
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle after probe failure", s.State())
	}
}

func TestWindowValidate(t *testing.T) {
	total := 12 * time.Second
	tests := []struct {
		name    string
		start   time.Duration
		wantErr bool
	}{
		{"at source start", 0, false},
		{"mid-source", 2 * time.Second, false},
		{"last valid offset", 7 * time.Second, false},
		{"past last valid offset", 7*time.Second + time.Millisecond, true},
		{"negative", -time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Window{Start: tt.start}.Validate(total)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(start=%s) err = %v, wantErr %v", tt.start, err, tt.wantErr)
			}
		})
	}
}

func TestWindowCoversExactlyFiveSeconds(t *testing.T) {
	w := Window{Start: 2 * time.Second}
	if w.End() != 7*time.Second {
		t.Errorf("window [%s, %s], want [2s, 7s]", w.Start, w.End())
	}
	if w.End()-w.Start != ClipLength {
		t.Errorf("window length = %s, want %s", w.End()-w.Start, ClipLength)
	}
}

func TestSelectWindow_OnlyInNeedsTrim(t *testing.T) {
	s := NewSession()
	if err := s.SelectWindow(Window{}); err == nil {
		t.Error("expected error selecting a window in idle")
	}

	if err := s.SelectFile(context.Background(), &fakeProber{duration: 12 * time.Second}, "long.mp4"); err != nil {
		t.Fatalf("select file: %v", err)
	}
	if err := s.SelectWindow(Window{Start: 20 * time.Second}); err == nil {
		t.Error("expected error for window past the end of the source")
	}
	if err := s.SelectWindow(Window{Start: 2 * time.Second}); err != nil {
		t.Errorf("valid window rejected: %v", err)
	}
}

func needsTrimSession(t *testing.T, start time.Duration) *Session {
	t.Helper()
	s := NewSession()
	if err := s.SelectFile(context.Background(), &fakeProber{duration: 12 * time.Second}, "long.mp4"); err != nil {
		t.Fatalf("select file: %v", err)
	}
	if err := s.SelectWindow(Window{Start: start}); err != nil {
		t.Fatalf("select window: %v", err)
	}
	return s
}

func TestTrim_FastPathSuccess(t *testing.T) {
	s := needsTrimSession(t, 2*time.Second)
	fast := &fakeStrategy{name: "fast", reports: []int{40, 80}}
	fallback := &fakeStrategy{name: "fallback"}
	trimmer := &Trimmer{Strategies: []Strategy{fast, fallback}, FastPathTimeout: time.Second}

	if err := s.Trim(context.Background(), trimmer, "out.mp4", nil); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if s.State() != StateTrimmed {
		t.Errorf("state = %s, want trimmed", s.State())
	}
	// Trimmed output is treated as exactly the clip length, no re-probe.
	if s.Duration() != ClipLength {
		t.Errorf("duration = %s, want %s", s.Duration(), ClipLength)
	}
	if s.FilePath() != "out.mp4" {
		t.Errorf("file = %s, want out.mp4", s.FilePath())
	}
	if fallback.calls != 0 {
		t.Errorf("fallback ran %d times, want 0", fallback.calls)
	}
}

func TestTrim_TimeoutFallsBack(t *testing.T) {
	s := needsTrimSession(t, 2*time.Second)
	// Fast path blocks until its timeout cancels it; fallback succeeds.
	fast := &fakeStrategy{name: "fast", block: true}
	fallback := &fakeStrategy{name: "fallback", reports: []int{50, 100}}
	trimmer := &Trimmer{Strategies: []Strategy{fast, fallback}, FastPathTimeout: 10 * time.Millisecond}

	if err := s.Trim(context.Background(), trimmer, "out.mp4", nil); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if fast.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = fast %d / fallback %d, want 1/1", fast.calls, fallback.calls)
	}
	if s.State() != StateTrimmed {
		t.Errorf("state = %s, want trimmed", s.State())
	}
}

func TestTrim_TotalFailureIsRetryable(t *testing.T) {
	s := needsTrimSession(t, 2*time.Second)
	fast := &fakeStrategy{name: "fast", err: errors.New("copy failed")}
	fallback := &fakeStrategy{name: "fallback", err: errors.New("encode failed")}
	trimmer := &Trimmer{Strategies: []Strategy{fast, fallback}, FastPathTimeout: time.Second}

	err := s.Trim(context.Background(), trimmer, "out.mp4", nil)
	var rerr *RetryableError
	if !errors.As(err, &rerr) {
		t.Fatalf("got %v, want RetryableError", err)
	}
	// Back to needs_trim: the user re-picks the window and retries.
	if s.State() != StateNeedsTrim {
		t.Errorf("state = %s, want needs_trim", s.State())
	}
	if s.FilePath() != "long.mp4" {
		t.Errorf("file = %s, want the original selection intact", s.FilePath())
	}

	// Retry after re-selecting succeeds.
	if err := s.SelectWindow(Window{Start: 3 * time.Second}); err != nil {
		t.Fatalf("re-select window: %v", err)
	}
	fallback.err = nil
	if err := s.Trim(context.Background(), trimmer, "out.mp4", nil); err != nil {
		t.Fatalf("retry trim: %v", err)
	}
}

func TestTrim_ProgressIsMonotonic(t *testing.T) {
	s := needsTrimSession(t, 2*time.Second)
	// Fast path reports progress then fails; fallback restarts from zero.
	fast := &fakeStrategy{name: "fast", reports: []int{30, 60}, err: errors.New("copy failed")}
	fallback := &fakeStrategy{name: "fallback", reports: []int{10, 50, 100}}
	trimmer := &Trimmer{Strategies: []Strategy{fast, fallback}, FastPathTimeout: time.Second}

	var seen []int
	err := s.Trim(context.Background(), trimmer, "out.mp4", func(p Progress) {
		seen = append(seen, p.Percent)
	})
	if err != nil {
		t.Fatalf("trim: %v", err)
	}

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress went backwards: %v", seen)
		}
	}
	if len(seen) == 0 || seen[len(seen)-1] != 100 {
		t.Errorf("progress = %v, want it to end at 100", seen)
	}
}

func TestReadyToSubmit_RequiresAllFields(t *testing.T) {
	s := NewSession()
	if err := s.SelectFile(context.Background(), &fakeProber{duration: 4 * time.Second}, "short.mp4"); err != nil {
		t.Fatalf("select file: %v", err)
	}

	if err := s.CheckReady(); !errors.Is(err, ErrNotReady) {
		t.Errorf("got %v, want ErrNotReady without category and terms", err)
	}

	s.SetCategory("juggling")
	if err := s.CheckReady(); !errors.Is(err, ErrNotReady) {
		t.Errorf("got %v, want ErrNotReady without terms", err)
	}
	if s.State() == StateReadyToSubmit {
		t.Error("reached ready_to_submit without terms accepted")
	}

	s.AcceptTerms(true)
	if err := s.CheckReady(); err != nil {
		t.Errorf("CheckReady = %v, want nil", err)
	}
	if s.State() != StateReadyToSubmit {
		t.Errorf("state = %s, want ready_to_submit", s.State())
	}

	// Withdrawing terms demotes.
	s.AcceptTerms(false)
	if s.State() != StateDurationOk {
		t.Errorf("state = %s, want duration_ok after terms withdrawn", s.State())
	}
}

func TestTrim_PromotesWhenFieldsSetBeforeTrim(t *testing.T) {
	s := needsTrimSession(t, 2*time.Second)
	// Category and terms chosen while the clip still needs trimming.
	s.SetCategory("juggling")
	s.AcceptTerms(true)

	trimmer := &Trimmer{Strategies: []Strategy{&fakeStrategy{name: "fast"}}, FastPathTimeout: time.Second}
	if err := s.Trim(context.Background(), trimmer, "out.mp4", nil); err != nil {
		t.Fatalf("trim: %v", err)
	}

	if err := s.CheckReady(); err != nil {
		t.Fatalf("CheckReady = %v, want nil", err)
	}
	if s.State() != StateReadyToSubmit {
		t.Errorf("state = %s, want ready_to_submit after trim with all requirements met", s.State())
	}
}

func TestSelectFile_PromotesWhenFieldsAlreadySet(t *testing.T) {
	s := NewSession()
	s.SetCategory("juggling")
	s.AcceptTerms(true)

	if err := s.SelectFile(context.Background(), &fakeProber{duration: 4 * time.Second}, "short.mp4"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.State() != StateReadyToSubmit {
		t.Errorf("state = %s, want ready_to_submit for a short clip with fields set", s.State())
	}
}

func TestTrimmedSessionBecomesReady(t *testing.T) {
	s := needsTrimSession(t, 2*time.Second)
	trimmer := &Trimmer{Strategies: []Strategy{&fakeStrategy{name: "fast"}}, FastPathTimeout: time.Second}
	if err := s.Trim(context.Background(), trimmer, "out.mp4", nil); err != nil {
		t.Fatalf("trim: %v", err)
	}

	s.SetCategory("parkour")
	s.AcceptTerms(true)
	if s.State() != StateReadyToSubmit {
		t.Errorf("state = %s, want ready_to_submit", s.State())
	}
}

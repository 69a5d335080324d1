package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time {
	return t0.Add(time.Duration(n) * time.Millisecond)
}

// feed samples one reading per millisecond starting at start and returns
// the times at which transitions were reported.
func feed(d *Debouncer, start int, readings []bool) map[int]Transition {
	out := make(map[int]Transition)
	for i, r := range readings {
		if tr := d.Sample(r, ms(start+i)); tr != TransitionNone {
			out[start+i] = tr
		}
	}
	return out
}

func hold(level bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = level
	}
	return out
}

func TestNewDebouncer(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)
	if d.Stable() {
		t.Error("new debouncer should start released")
	}
	if d.Toggle() {
		t.Error("new debouncer should start with toggle off")
	}
}

func TestDebounceBounceThenHold(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)

	// Bounce 0,1,0,1,0 over 5ms, then hold pressed for 15ms.
	readings := append([]bool{false, true, false, true, false}, hold(true, 16)...)
	got := feed(d, 0, readings)

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 transition, got %d: %v", len(got), got)
	}
	// Hold began at 5ms; accepted once more than 10ms have elapsed.
	if got[16] != TransitionPressed {
		t.Errorf("expected PRESSED at 16ms, got %v", got)
	}
	if !d.Stable() {
		t.Error("expected stable pressed")
	}
	if !d.Toggle() {
		t.Error("expected toggle on after one press")
	}
}

func TestDebounceNoChangeDuringBounce(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)

	got := feed(d, 0, []bool{false, true, false, true, false, true, false, true})
	if len(got) != 0 {
		t.Errorf("expected no transitions during bounce, got %v", got)
	}
	if d.Stable() {
		t.Error("stable state must not change during bounce")
	}
}

func TestDebounceExactThresholdNotAccepted(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)

	d.Sample(true, ms(0))
	if tr := d.Sample(true, ms(10)); tr != TransitionNone {
		t.Errorf("expected no transition at exactly the threshold, got %v", tr)
	}
	if tr := d.Sample(true, ms(11)); tr != TransitionPressed {
		t.Errorf("expected PRESSED past the threshold, got %v", tr)
	}
}

func TestDebounceShortPressDiscarded(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)

	readings := append(hold(false, 5), hold(true, 10)...) // 10ms press
	readings = append(readings, hold(false, 50)...)
	got := feed(d, 0, readings)

	if len(got) != 0 {
		t.Errorf("expected short press to be discarded, got %v", got)
	}
	if d.Toggle() {
		t.Error("toggle must not flip for a discarded press")
	}
}

func TestDebounceReleaseDoesNotToggle(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)

	readings := append(hold(true, 20), hold(false, 20)...)
	got := feed(d, 0, readings)

	if len(got) != 2 {
		t.Fatalf("expected press and release, got %v", got)
	}
	if got[11] != TransitionPressed {
		t.Errorf("expected PRESSED at 11ms, got %v", got)
	}
	if got[31] != TransitionReleased {
		t.Errorf("expected RELEASED at 31ms, got %v", got)
	}
	if !d.Toggle() {
		t.Error("release must not flip the toggle back")
	}
}

func TestDebounceTogglesOncePerPress(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)

	var readings []bool
	for i := 0; i < 3; i++ {
		readings = append(readings, hold(true, 20)...)
		readings = append(readings, hold(false, 20)...)
	}
	feed(d, 0, readings)

	// Three presses: off -> on -> off -> on
	if !d.Toggle() {
		t.Error("expected toggle on after three presses")
	}
}

func TestDebounceStableChangesAtMostOncePerWindow(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)

	// Alternate every 6ms for a while: never stable long enough.
	var readings []bool
	level := false
	for i := 0; i < 20; i++ {
		level = !level
		readings = append(readings, hold(level, 6)...)
	}
	got := feed(d, 0, readings)
	if len(got) != 0 {
		t.Errorf("expected no accepted transitions, got %v", got)
	}
}

func TestDebounceResetToggle(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, t0)
	feed(d, 0, hold(true, 20))
	if !d.Toggle() {
		t.Fatal("expected toggle on")
	}
	d.ResetToggle()
	if d.Toggle() {
		t.Error("expected toggle off after reset")
	}
	if !d.Stable() {
		t.Error("reset must not touch the stable level")
	}
}

func TestTransitionString(t *testing.T) {
	tests := []struct {
		tr   Transition
		want string
	}{
		{TransitionNone, "NONE"},
		{TransitionPressed, "PRESSED"},
		{TransitionReleased, "RELEASED"},
	}
	for _, tt := range tests {
		if got := tt.tr.String(); got != tt.want {
			t.Errorf("%d: got %q, want %q", tt.tr, got, tt.want)
		}
	}
}

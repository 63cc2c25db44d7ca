package gesture

import "time"

// DefaultLongPress is the hold time before a press counts as a long press.
const DefaultLongPress = 500 * time.Millisecond

// LongPress detects a pointer held down for a fixed delay.
type LongPress struct {
	clock  Clock
	delay  time.Duration
	onFire func()

	timer Timer
	gen   uint64
	fired bool
}

// NewLongPress returns a detector that calls onFire once the pointer has
// been held for delay.
func NewLongPress(clock Clock, delay time.Duration, onFire func()) *LongPress {
	if clock == nil {
		clock = RealClock{}
	}
	if delay <= 0 {
		delay = DefaultLongPress
	}
	return &LongPress{clock: clock, delay: delay, onFire: onFire}
}

// Press starts timing. A press already being timed is restarted.
func (l *LongPress) Press() {
	l.Cancel()
	l.fired = false
	l.gen++
	gen := l.gen
	l.timer = l.clock.AfterFunc(l.delay, func() {
		if gen != l.gen {
			return
		}
		l.timer = nil
		l.fired = true
		if l.onFire != nil {
			l.onFire()
		}
	})
}

// Release ends the press and reports whether it became a long press.
func (l *LongPress) Release() bool {
	fired := l.fired
	l.Cancel()
	l.fired = false
	return fired
}

// Cancel stops timing without firing.
func (l *LongPress) Cancel() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.gen++
}

// Pending reports whether a press is being timed.
func (l *LongPress) Pending() bool { return l.timer != nil }

// Fired reports whether the current press has already fired.
func (l *LongPress) Fired() bool { return l.fired }

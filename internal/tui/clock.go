package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hpungsan/perch/internal/gesture"
)

// timerFiredMsg tells the model a gesture timer ran so the view redraws.
type timerFiredMsg struct{}

// Clock arms real timers and posts a redraw message to the running program
// after each callback. Pass it to ops.WithClock when building the session
// the terminal desktop drives. Messages are dropped until Run attaches a
// program.
type Clock struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewClock returns a Clock with no program attached.
func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) attach(send func(tea.Msg)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send = send
}

// AfterFunc implements gesture.Clock.
func (c *Clock) AfterFunc(d time.Duration, f func()) gesture.Timer {
	return gesture.RealClock{}.AfterFunc(d, func() {
		f()
		c.mu.Lock()
		send := c.send
		c.mu.Unlock()
		if send != nil {
			send(timerFiredMsg{})
		}
	})
}

package editor

import (
	"sync"
	"time"
)

// Autosaver debounces draft writes: each Note cancels any pending write and
// schedules a new one, so a burst of edits produces a single draft write
// after a quiet period instead of one per keystroke. The session owns its
// autosaver and stops it on teardown, so timers never leak across editor
// instances.
type Autosaver struct {
	mu      sync.Mutex
	delay   time.Duration
	save    func()
	timer   *time.Timer
	stopped bool
}

// NewAutosaver creates an autosaver that invokes save after delay of
// inactivity.
func NewAutosaver(delay time.Duration, save func()) *Autosaver {
	return &Autosaver{delay: delay, save: save}
}

// Note records a mutation: the pending write, if any, is cancelled and
// rescheduled.
func (a *Autosaver) Note() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()
	a.save()
}

// Flush cancels any pending write and saves immediately.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.save()
}

// Stop cancels any pending write. Further Notes are ignored.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// StartAutosave attaches a debounced autosaver to the session: after any
// mutation, once the delay elapses without further edits, the current
// campaign is written into the draft list. Starting twice replaces the
// previous autosaver.
func (s *Session) StartAutosave(delay time.Duration) {
	a := NewAutosaver(delay, func() {
		s.mu.Lock()
		if s.current == nil {
			s.mu.Unlock()
			return
		}
		s.saveDraftLocked(s.current)
		s.persistLocked()
		s.mu.Unlock()
		s.logger.Debug("autosaved draft")
	})

	s.mu.Lock()
	prev := s.autosaver
	s.autosaver = a
	s.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
}

// Package deploy simulates publishing a generated site. Nothing leaves the
// process: a deployment waits for a fixed delay and then reports a made-up
// public URL.
package deploy

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDelay is how long a simulated deployment takes.
const DefaultDelay = 4500 * time.Millisecond

// State is the phase of a deployment.
type State string

const (
	StateIdle      State = "idle"
	StateDeploying State = "deploying"
	StateSuccess   State = "success"
)

// Status is a snapshot of the simulator.
type Status struct {
	ID         string     `json:"id,omitempty"`
	State      State      `json:"state"`
	URL        string     `json:"url,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Simulator runs at most one deployment at a time.
type Simulator struct {
	mu       sync.Mutex
	delay    time.Duration
	status   Status
	onChange func(Status)

	// after schedules f after d; replaced in tests.
	after func(d time.Duration, f func())
	now   func() time.Time
}

// NewSimulator creates an idle simulator. A non-positive delay uses
// DefaultDelay. onChange, when set, is called after every state change.
func NewSimulator(delay time.Duration, onChange func(Status)) *Simulator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Simulator{
		delay:    delay,
		status:   Status{State: StateIdle},
		onChange: onChange,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		now: time.Now,
	}
}

// Start begins a deployment. Starting while one is in progress returns the
// running deployment unchanged; starting after a success begins a new one.
func (s *Simulator) Start() Status {
	s.mu.Lock()
	if s.status.State == StateDeploying {
		st := s.status
		s.mu.Unlock()
		return st
	}

	id := uuid.New()
	started := s.now()
	s.status = Status{ID: id.String(), State: StateDeploying, StartedAt: &started}
	st := s.status
	s.mu.Unlock()

	s.notify(st)
	s.after(s.delay, func() { s.finish(id) })
	return st
}

func (s *Simulator) finish(id uuid.UUID) {
	s.mu.Lock()
	if s.status.ID != id.String() || s.status.State != StateDeploying {
		s.mu.Unlock()
		return
	}
	finished := s.now()
	s.status.State = StateSuccess
	s.status.URL = siteURL(id)
	s.status.FinishedAt = &finished
	st := s.status
	s.mu.Unlock()

	s.notify(st)
}

// Reset returns the simulator to idle, abandoning any running deployment.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.status = Status{State: StateIdle}
	st := s.status
	s.mu.Unlock()
	s.notify(st)
}

// Status returns the current state.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Simulator) notify(st Status) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

// siteURL derives the fake public address from the deployment id.
func siteURL(id uuid.UUID) string {
	n := binary.BigEndian.Uint16(id[:2]) % 10000
	return fmt.Sprintf("https://swift-site-%04d.insta-site.ai", n)
}

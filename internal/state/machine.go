package state

import (
	"fmt"
	"sync"
	"time"

	"brandstudio/internal/domain"
)

// ProcessingState is the lifecycle stage of one interactive request.
type ProcessingState string

const (
	Idle       ProcessingState = "idle"
	Analyzing  ProcessingState = "analyzing"
	Generating ProcessingState = "generating"
	Complete   ProcessingState = "complete"
	Error      ProcessingState = "error"
)

// Terminal reports whether no further progress happens without a reset.
func (s ProcessingState) Terminal() bool {
	return s == Complete || s == Error
}

// Snapshot is a point-in-time copy of a machine.
type Snapshot struct {
	State     ProcessingState `json:"state"`
	Message   string          `json:"message,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Machine tracks one request through idle, analyzing, generating and a
// terminal state. It is safe for concurrent readers.
type Machine struct {
	mu        sync.RWMutex
	state     ProcessingState
	message   string
	updatedAt time.Time
	now       func() time.Time
}

// NewMachine returns a machine in the idle state.
func NewMachine() *Machine {
	m := &Machine{state: Idle, now: time.Now}
	m.updatedAt = m.now()
	return m
}

// Submit moves idle to analyzing.
func (m *Machine) Submit() error {
	return m.transition(Idle, Analyzing, "")
}

// StrategyResolved moves analyzing to generating.
func (m *Machine) StrategyResolved() error {
	return m.transition(Analyzing, Generating, "")
}

// Rendered moves generating to complete.
func (m *Machine) Rendered() error {
	return m.transition(Generating, Complete, "")
}

// Fail moves analyzing or generating to error, keeping message for display.
func (m *Machine) Fail(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Analyzing && m.state != Generating {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, m.state, Error)
	}
	m.set(Error, message)
	return nil
}

// Reset returns a terminal machine to idle. Resetting an idle machine is a no-op.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Idle:
		return nil
	case Complete, Error:
		m.set(Idle, "")
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, m.state, Idle)
	}
}

// State returns the current state.
func (m *Machine) State() ProcessingState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot returns the current state with its message and timestamp.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Message: m.message, UpdatedAt: m.updatedAt}
}

func (m *Machine) transition(from, to ProcessingState, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != from {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, m.state, to)
	}
	m.set(to, message)
	return nil
}

func (m *Machine) set(s ProcessingState, message string) {
	m.state = s
	m.message = message
	m.updatedAt = m.now()
}

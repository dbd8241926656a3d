package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/process"
)

// State is a step in the lifecycle of a single group run.
type State string

// Run states.
const (
	StateIdle              State = "idle"
	StateConfigResolved    State = "config_resolved"
	StateEnvironmentReady  State = "environment_ready"
	StateRunning           State = "running"
	StateSucceeded         State = "succeeded"
	StateFailedRecoverable State = "failed_recoverable"
	StateFailedFatal       State = "failed_fatal"
)

// ValidTransitions defines the allowed state transitions.
//
//	Idle → ConfigResolved, FailedFatal
//	ConfigResolved → EnvironmentReady, FailedRecoverable, FailedFatal
//	EnvironmentReady → Running, FailedRecoverable, FailedFatal
//	Running → Succeeded, FailedRecoverable, FailedFatal
//
// FailedRecoverable before Running only happens on interrupt.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[State][]State{
	StateIdle:             {StateConfigResolved, StateFailedFatal},
	StateConfigResolved:   {StateEnvironmentReady, StateFailedRecoverable, StateFailedFatal},
	StateEnvironmentReady: {StateRunning, StateFailedRecoverable, StateFailedFatal},
	StateRunning:          {StateSucceeded, StateFailedRecoverable, StateFailedFatal},
}

// IsValidTransition checks if a transition from one state to another is allowed.
func IsValidTransition(from, to State) bool {
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s State) bool {
	_, ok := ValidTransitions[s]
	return !ok
}

// Transition records one state change.
type Transition struct {
	From      State     `json:"from"`
	To        State     `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// Run is the record of one group execution.
type Run struct {
	ID          string          `json:"id"`
	Group       string          `json:"group"`
	Key         string          `json:"key"`
	Type        domain.RunType  `json:"type"`
	State       State           `json:"state"`
	Outcome     process.Outcome `json:"-"`
	Identifier  string          `json:"identifier,omitempty"`
	ReportPath  string          `json:"report_path,omitempty"`
	Err         error           `json:"-"`
	Transitions []Transition    `json:"transitions"`
}

// Interrupted reports whether the run was stopped by an interrupt.
func (r *Run) Interrupted() bool {
	return r.Outcome.Kind == process.OutcomeInterrupted
}

// Duration is the time between the first and the last recorded transition.
func (r *Run) Duration() time.Duration {
	if len(r.Transitions) == 0 {
		return 0
	}
	return r.Transitions[len(r.Transitions)-1].Timestamp.Sub(r.Transitions[0].Timestamp)
}

func (r *Run) transition(ctx context.Context, to State, now time.Time, reason string) error {
	if !IsValidTransition(r.State, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", pixelerrors.ErrInvalidTransition, r.State, to)
	}

	r.Transitions = append(r.Transitions, Transition{
		From:      r.State,
		To:        to,
		Timestamp: now,
		Reason:    reason,
	})

	zerolog.Ctx(ctx).Info().
		Str("from", string(r.State)).
		Str("to", string(to)).
		Str("reason", reason).
		Msg("run state changed")

	r.State = to
	return nil
}

package authflow

import (
	goerrors "github.com/goliatone/go-errors"
)

const textCodeInvalidTransition = "INVALID_SESSION_TRANSITION"

// ErrInvalidTransition is returned when a requested phase change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid session phase transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// sessionMachine holds the phase transition graph. Nothing moves back into
// PhaseInitializing. Staying in the same phase is always allowed.
type sessionMachine struct {
	transitions map[SessionPhase]map[SessionPhase]struct{}
}

func newSessionMachine() sessionMachine {
	return sessionMachine{
		transitions: map[SessionPhase]map[SessionPhase]struct{}{
			PhaseInitializing: {
				PhaseUnauthenticated: {},
				PhaseAuthenticated:   {},
			},
			PhaseUnauthenticated: {
				PhaseAuthenticated: {},
			},
			PhaseAuthenticated: {
				PhaseUnauthenticated: {},
			},
		},
	}
}

func (m sessionMachine) validate(from, to SessionPhase) error {
	if to == "" {
		return ErrInvalidTransition.Clone().WithMetadata(map[string]any{
			"from":   from,
			"reason": "target phase is empty",
		})
	}

	if from == to {
		return nil
	}

	if _, ok := m.transitions[from][to]; !ok {
		return ErrInvalidTransition.Clone().WithMetadata(map[string]any{
			"from": from,
			"to":   to,
		})
	}

	return nil
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors. Callers match them with errors.Is.
var (
	ErrInfeasibleAllocation = errors.New("infeasible allocation")
	ErrUnboundedAllocation  = errors.New("unbounded allocation")
	ErrSolverUnavailable    = errors.New("solver unavailable")
	ErrSolverLimit          = errors.New("solver stopped before proving optimality")
	ErrInputShapeMismatch   = errors.New("input shape mismatch")
	ErrInvalidInput         = errors.New("invalid input")
)

// InfeasibleAllocationError reports a stage whose constraints cannot all hold.
// Conflicts names an irreducible infeasible subset of the stage's constraints
// when one was computed.
type InfeasibleAllocationError struct {
	Stage     string
	Conflicts []string
}

func (e *InfeasibleAllocationError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("%s stage: %s", e.Stage, ErrInfeasibleAllocation)
	}
	return fmt.Sprintf("%s stage: %s (conflicting constraints: %s)",
		e.Stage, ErrInfeasibleAllocation, strings.Join(e.Conflicts, ", "))
}

func (e *InfeasibleAllocationError) Unwrap() error {
	return ErrInfeasibleAllocation
}

// InputShapeMismatchError lists every key-set mismatch found across the input tables
type InputShapeMismatchError struct {
	Problems []string
}

func (e *InputShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInputShapeMismatch, strings.Join(e.Problems, "; "))
}

func (e *InputShapeMismatchError) Unwrap() error {
	return ErrInputShapeMismatch
}

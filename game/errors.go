package game

import (
	"fmt"

	"github.com/pkg/errors"
)

// RuleViolation rejects a command that breaks a game rule. Permitted is false
// for violations a conforming client can never trigger, such as acting after
// finishing the round.
type RuleViolation struct {
	Msg       string
	Permitted bool
}

func (e *RuleViolation) Error() string {
	return e.Msg
}

func violation(msg string) *RuleViolation {
	return &RuleViolation{Msg: msg, Permitted: true}
}

func forbidden(msg string) *RuleViolation {
	return &RuleViolation{Msg: msg, Permitted: false}
}

func IsRuleViolation(err error) bool {
	var rv *RuleViolation
	return errors.As(err, &rv)
}

type InvalidDealError struct {
	Msg string
}

func (e InvalidDealError) Error() string {
	return e.Msg
}

type UnexpectedPhaseError struct {
	Phase Phase
	Op    string
}

func (e UnexpectedPhaseError) Error() string {
	return fmt.Sprintf("Unexpected phase %s for %s", e.Phase, e.Op)
}

// Package lifecycle holds the status state machines of properties and
// requests. Every known status may move to every known status, itself
// included; there is no terminal state.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/thehopecrystal/verify-properties/internal/models"
)

var ErrUnknownStatus = errors.New(`unknown status`)

const (
	InitialProperty = models.PropertyPending
	InitialRequest  = models.RequestPending
)

type Status interface {
	models.PropertyStatus | models.RequestStatus
	Valid() bool
}

func CanTransition[S Status](from, to S) bool {
	return to.Valid()
}

// Transition returns the status a record holds after moving from "from" to
// "to".
func Transition[S Status](from, to S) (S, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf(`%w: %q`, ErrUnknownStatus, string(to))
	}
	return to, nil
}

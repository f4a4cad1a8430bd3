package imposter

import (
	"errors"

	"github.com/oliverbestmann/imposter/internal/erased"
)

var (
	// ErrTypeMismatch is returned when a value is requested or offered as a type
	// that differs from the erased type. The stored value is left untouched.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrConsumed is returned when using an Imposter whose value was already
	// moved out, dropped or forgotten.
	ErrConsumed = errors.New("imposter already consumed")

	// ErrCapacityOverflow is returned if a Vec can not grow any further.
	ErrCapacityOverflow = erased.ErrCapacityOverflow
)

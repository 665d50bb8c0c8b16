package b2d

import "errors"

var (
	// ErrLocked is returned by mutating calls made while the world is
	// inside Step, for example from a contact callback.
	ErrLocked = errors.New("b2d: world is locked")

	// ErrSameBody is returned when a joint connects a body to itself.
	ErrSameBody = errors.New("b2d: joint bodies must differ")

	// ErrForeignBody is returned when an object belongs to another world
	// or has already been destroyed.
	ErrForeignBody = errors.New("b2d: object does not belong to this world")

	// ErrInvalidDef is returned for definitions that fail validation.
	ErrInvalidDef = errors.New("b2d: invalid definition")
)

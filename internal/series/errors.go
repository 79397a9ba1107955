package series

import "errors"

var (
	// ErrUnknownAlgorithm is returned when the progression algorithm tag is not recognised.
	ErrUnknownAlgorithm = errors.New("unknown progression algorithm")
	// ErrInvalidVolumeBounds is returned when the logarithmic progression is given non-positive volume bounds.
	ErrInvalidVolumeBounds = errors.New("logarithmic progression requires positive min and max volumes")
)

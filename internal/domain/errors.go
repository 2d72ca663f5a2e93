package domain

import "errors"

var (
	// ErrInvalidInput is returned for malformed or empty inputs: no usable
	// observations, missing required variables, or too few timesteps.
	ErrInvalidInput = errors.New("invalid input")

	// ErrShapeMismatch is returned when a field's length disagrees with the
	// declared time/latitude/longitude axis lengths.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedPolicy is returned for an unknown wind assignment policy.
	ErrUnsupportedPolicy = errors.New("unsupported wind policy")
)

package chart

import "errors"

var (
	// ErrMissingPoint reports a derivation that needs a natal point the
	// position set does not carry.
	ErrMissingPoint = errors.New("required natal point is missing")
)

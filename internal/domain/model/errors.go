package model

import "errors"

// Sentinel kinds for domain validation errors. These allow errors.Is/As
// from callers.
var (
	ErrInvalidSect = errors.New("sect must be 'diurnal' or 'nocturnal'")
	ErrInvalidMode = errors.New("mode must be one of: qualifying, all, both")
)

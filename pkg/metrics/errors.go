package metrics

import (
	"errors"
)

// Sentinel errors for metrics consumers, matchable with errors.Is.
var (
	ErrObserveFailed = errors.New("metrics observe failed")
)

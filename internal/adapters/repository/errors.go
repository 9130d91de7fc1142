package repository

import "errors"

// Sentinel kinds for report store errors.
var (
	ErrNotFound = errors.New("query report not found")
)

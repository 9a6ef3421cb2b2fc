package services

import "errors"

var (
	// ErrNoDataset is returned when a session has no uploaded dataset
	ErrNoDataset = errors.New("no dataset loaded for session")

	// ErrUnknownChart is returned when a chart ID is not recognized
	ErrUnknownChart = errors.New("unknown chart")
)

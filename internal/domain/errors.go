package domain

import "errors"

// Domain errors can be checked with errors.Is.
var (
	// ErrInvalidConfig is wrapped by every configuration failure.
	ErrInvalidConfig = errors.New("propship: invalid configuration")

	// ErrFileExists is returned when a received file would overwrite an
	// existing one in the destination directory.
	ErrFileExists = errors.New("propship: destination file already exists")

	// ErrInvalidName is returned for record set names that are not plain
	// base file names.
	ErrInvalidName = errors.New("propship: invalid file name")

	// ErrAlreadyRunning is returned when starting a component that is running.
	ErrAlreadyRunning = errors.New("propship: already running")

	// ErrNotRunning is returned for a lifecycle transition that requires a
	// running component.
	ErrNotRunning = errors.New("propship: not running")

	// ErrEmptyRecordSet is returned when filtering leaves nothing to send.
	ErrEmptyRecordSet = errors.New("propship: record set is empty after filtering")
)

package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have approval authority for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., deciding an already-decided expense)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransient is returned when a remote write failed in a way worth retrying
	ErrTransient = errors.New("transient failure")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrProjectSuspended is returned when a write targets a suspended project
	ErrProjectSuspended = errors.New("project is suspended")

	// ErrPhaseDisabled is returned when a write targets a disabled phase
	ErrPhaseDisabled = errors.New("phase is disabled")
)

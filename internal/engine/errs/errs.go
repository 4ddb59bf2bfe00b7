// Package errs defines the error taxonomy shared by the render subsystems.
// Callers match with errors.Is; concrete errors wrap one of these with %w.
package errs

import "errors"

var (
	// ErrInitialization means the backend or context could not be created.
	// It is fatal: the application must abort startup.
	ErrInitialization = errors.New("render initialization failed")

	// ErrResource is a texture or surface allocation failure. The affected
	// draw is skipped or uses the placeholder.
	ErrResource = errors.New("render resource unavailable")

	// ErrInvalidState is a caller violation of the scene or bracket state
	// machine.
	ErrInvalidState = errors.New("invalid render state")

	// ErrDecode comes from the asset loader for missing or corrupt pixel data.
	// The registry reports it as ErrResource.
	ErrDecode = errors.New("texture decode failed")
)

package service

import (
	"errors"
	"fmt"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

// Sentinel errors the HTTP layer maps to status codes.
var (
	// ErrUnauthorized covers every credential rejection: no valid token,
	// outside the window, already used, or lost the claim race. The caller
	// is told nothing more specific.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers missing devices and binding violations (device not
	// in the unit, unit unpublished).
	ErrNotFound = errors.New("not found")
)

// DispatchError carries the classified vendor failure out of an unlock so the
// HTTP layer can answer 502 with the adapter's message.
type DispatchError struct {
	Result domain.CommandResult
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed: %s (%s)", e.Result.Message, e.Result.Error)
}

package interfaces

import (
	"context"
	"errors"

	"newspulse/internal/types"
)

// Generator is a remote text-generation service. Implementations must honour ctx
// cancellation and return plain text or a transport/auth/provider error.
type Generator interface {
	Generate(ctx context.Context, req types.GenerateRequest) (string, error)
}

// ErrMissingCredential is returned by a Generator before any network call when the
// request carries no API key.
var ErrMissingCredential = errors.New("api key missing")

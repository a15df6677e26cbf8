package ports

import (
	"context"

	"go.trai.ch/pkgdeck/internal/core/domain"
)

// Prompter collects input from the user outside the process stream.
//
//go:generate mockgen -source=prompter.go -destination=mocks/mock_prompter.go -package=mocks
type Prompter interface {
	// Credential asks for a secret without echo.
	Credential(ctx context.Context, req domain.CredentialRequest) (domain.CredentialResponse, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
}

package guild

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/promile/internal/repositories/guild Repository

import (
	"context"
)

// Repository defines the interface for guild store persistence
type Repository interface {
	// Load reads the persisted store, creating or recovering it when needed
	Load(ctx context.Context) (*LoadOutput, error)

	// Save replaces the persisted store with the given one
	Save(ctx context.Context, input *SaveInput) error

	// Close releases the backend
	Close() error
}

package guild

import "github.com/KirkDiggler/promile/internal/models"

// LoadOutput contains the result of loading the store
type LoadOutput struct {
	// Store is the loaded store, never nil
	Store *models.Store

	// Created is set when no document existed and an empty one was written
	Created bool

	// Recovered is set when the document was unreadable and was replaced
	// by an empty store
	Recovered bool

	// Report describes what decoding had to upgrade or drop
	Report DecodeReport
}

// SaveInput contains parameters for saving the store
type SaveInput struct {
	Store *models.Store
}

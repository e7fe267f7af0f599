package guild

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/rs/zerolog"
)

// errDocumentNotFound is returned by a backend when nothing was persisted yet
var errDocumentNotFound = errors.New("document not found")

// backend stores the encoded document as a single blob. Writes replace the
// whole blob.
type backend interface {
	name() string
	read(ctx context.Context) ([]byte, error)
	write(ctx context.Context, data []byte) error
	quarantine(ctx context.Context, data []byte) error
	close() error
}

// DocumentRepository implements Repository on top of a blob backend
type DocumentRepository struct {
	backend backend
	logger  zerolog.Logger

	// mu serialises whole-document writes
	mu sync.Mutex
}

func newDocumentRepository(b backend, logger zerolog.Logger) *DocumentRepository {
	return &DocumentRepository{
		backend: b,
		logger:  logger.With().Str("store_backend", b.name()).Logger(),
	}
}

// Load reads the persisted store. A missing document is created empty; an
// unreadable one is moved aside and replaced by an empty store.
func (r *DocumentRepository) Load(ctx context.Context) (*LoadOutput, error) {
	data, err := r.backend.read(ctx)
	if errors.Is(err, errDocumentNotFound) {
		store := models.NewStore()
		if err := r.Save(ctx, &SaveInput{Store: store}); err != nil {
			return nil, fmt.Errorf("failed to create empty store: %w", err)
		}
		r.logger.Info().Msg("no guild store found, created an empty one")
		return &LoadOutput{Store: store, Created: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	store, report, err := Decode(data)
	if err != nil {
		r.logger.Error().Err(err).Int("bytes", len(data)).Msg("guild store is unreadable, discarding it and starting empty")

		if qErr := r.backend.quarantine(ctx, data); qErr != nil {
			r.logger.Warn().Err(qErr).Msg("failed to keep a copy of the unreadable store")
		}

		store = models.NewStore()
		if err := r.Save(ctx, &SaveInput{Store: store}); err != nil {
			return nil, fmt.Errorf("failed to reinitialize store: %w", err)
		}
		return &LoadOutput{Store: store, Recovered: true}, nil
	}

	if !report.Clean() {
		r.logger.Warn().
			Bool("upgraded", report.Upgraded).
			Strs("dropped_kinds", report.DroppedKinds).
			Int("dropped_events", report.DroppedEvents).
			Msg("guild store needed repairs while loading")
	}

	return &LoadOutput{Store: store, Report: report}, nil
}

// Save encodes and writes the whole store
func (r *DocumentRepository) Save(ctx context.Context, input *SaveInput) error {
	if input == nil || input.Store == nil {
		return errors.New("input and store cannot be nil")
	}

	data, err := Encode(input.Store)
	if err != nil {
		return err
	}

	return r.SaveEncoded(ctx, data)
}

// SaveEncoded writes an already encoded document
func (r *DocumentRepository) SaveEncoded(ctx context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.write(ctx, data); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	r.logger.Debug().Int("bytes", len(data)).Msg("guild store saved")
	return nil
}

// Close releases the backend
func (r *DocumentRepository) Close() error {
	return r.backend.close()
}

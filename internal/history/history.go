package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Alias1177/HeartRisk/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Limit is the number of results kept, newest first
const Limit = 5

// Prepend returns a new history with result at the head, capped at Limit
func Prepend(history []models.PredictionResult, result models.PredictionResult) []models.PredictionResult {
	size := len(history) + 1
	if size > Limit {
		size = Limit
	}

	updated := make([]models.PredictionResult, 0, size)
	updated = append(updated, result)
	for _, r := range history {
		if len(updated) == Limit {
			break
		}
		updated = append(updated, r)
	}
	return updated
}

// Blobs is the key/value backend a Repository encodes history into
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Repository persists histories as JSON arrays
type Repository struct {
	blobs  Blobs
	logger zerolog.Logger
}

func NewRepository(blobs Blobs) *Repository {
	return &Repository{
		blobs:  blobs,
		logger: log.With().Str("component", "history").Logger(),
	}
}

// Load returns the stored history. A missing or unreadable payload yields an
// empty history; only backend failures are returned as errors.
func (r *Repository) Load(ctx context.Context, key string) ([]models.PredictionResult, error) {
	data, err := r.blobs.Get(ctx, key)
	if err != nil {
		return []models.PredictionResult{}, fmt.Errorf("loading history %s: %w", key, err)
	}
	if data == nil {
		return []models.PredictionResult{}, nil
	}

	var stored []models.PredictionResult
	if err := json.Unmarshal(data, &stored); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Discarding unreadable history")
		return []models.PredictionResult{}, nil
	}
	if stored == nil {
		return []models.PredictionResult{}, nil
	}
	if len(stored) > Limit {
		stored = stored[:Limit]
	}
	return stored, nil
}

// Save replaces the stored history
func (r *Repository) Save(ctx context.Context, key string, history []models.PredictionResult) error {
	if history == nil {
		history = []models.PredictionResult{}
	}

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := r.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("saving history %s: %w", key, err)
	}
	return nil
}

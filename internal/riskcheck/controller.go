package riskcheck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Alias1177/HeartRisk/internal/history"
	"github.com/Alias1177/HeartRisk/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidForm is returned by Submit when a bounded field fails validation
	ErrInvalidForm = errors.New("form has invalid fields")
	// ErrSubmitInFlight is returned by Submit while an earlier submission is still waiting
	ErrSubmitInFlight = errors.New("a risk check is already running")
)

// FailureMessage is shown when the prediction call or its decoding fails
const FailureMessage = "Submission failed, please retry."

// Controller owns the state of one risk check form: the raw inputs, their
// validation errors, the latest result and the capped history.
type Controller struct {
	key       string
	predictor models.Predictor
	store     models.HistoryStore
	logger    zerolog.Logger

	mu        sync.Mutex
	form      models.FormInput
	errors    models.ValidationErrors
	state     models.SubmitState
	result    *models.PredictionResult
	history   []models.PredictionResult
	failure   string
	inFlight  bool
	loaded    bool
	updatedAt time.Time
}

// NewController creates a controller whose history lives under key
func NewController(key string, predictor models.Predictor, store models.HistoryStore) *Controller {
	return &Controller{
		key:       key,
		predictor: predictor,
		store:     store,
		logger:    log.With().Str("component", "riskcheck").Str("key", key).Logger(),
		errors:    models.ValidationErrors{},
		state:     models.StateIdle,
		history:   []models.PredictionResult{},
		updatedAt: time.Now(),
	}
}

// Key is the storage key the history is persisted under
func (c *Controller) Key() string {
	return c.key
}

// LoadHistory restores the persisted history. Only the first call reads storage.
func (c *Controller) LoadHistory(ctx context.Context) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.loaded = true
	c.mu.Unlock()

	stored, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Warn().Err(err).Msg("History unavailable, starting empty")
		stored = []models.PredictionResult{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = stored
	c.touch()
	c.logger.Debug().Int("entries", len(stored)).Msg("History loaded")
}

// UpdateField overwrites one form field without validating it.
// It reports false for field names the form does not have.
func (c *Controller) UpdateField(name, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.form.Set(name, value) {
		c.logger.Debug().Str("field", name).Msg("Ignoring unknown field")
		return false
	}
	c.touch()
	return true
}

// Validate recomputes the validation errors for the current input
func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Controller) validateLocked() bool {
	c.errors = Validate(c.form)
	c.touch()
	return len(c.errors) == 0
}

// Submit validates the form and, when it passes, asks the predictor for a
// classification. On success the result becomes current, is prepended to the
// history and the history is persisted.
func (c *Controller) Submit(ctx context.Context) (models.Snapshot, error) {
	c.mu.Lock()
	if c.inFlight {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrSubmitInFlight
	}

	c.state = models.StateValidating
	c.failure = ""
	if !c.validateLocked() {
		c.state = models.StateInvalid
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrInvalidForm
	}

	c.state = models.StateRequesting
	c.inFlight = true
	req := BuildRequest(c.form)
	c.mu.Unlock()

	result, err := c.predictor.Predict(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		c.state = models.StateFailed
		c.failure = FailureMessage
		c.touch()
		c.logger.Error().Err(err).Msg("Prediction failed")
		return c.snapshotLocked(), fmt.Errorf("requesting prediction: %w", err)
	}

	c.state = models.StateSucceeded
	c.result = result
	c.history = history.Prepend(c.history, *result)
	c.touch()

	// persisted even when the caller has gone away
	if err := c.store.Save(context.WithoutCancel(ctx), c.key, c.history); err != nil {
		c.logger.Error().Err(err).Msg("Failed to persist history")
	}

	c.logger.Info().Str("risk", result.Risk).Float64("probability", result.Probability).Msg("Risk check completed")
	return c.snapshotLocked(), nil
}

// Snapshot returns a copy of the current state for rendering
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Explanation describes the current result
func (c *Controller) Explanation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Explain(c.result)
}

// UpdatedAt is the last time the controller state changed
func (c *Controller) UpdatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

func (c *Controller) touch() {
	c.updatedAt = time.Now()
}

func (c *Controller) snapshotLocked() models.Snapshot {
	errs := make(models.ValidationErrors, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}

	var result *models.PredictionResult
	if c.result != nil {
		r := *c.result
		result = &r
	}

	return models.Snapshot{
		Form:        c.form,
		Errors:      errs,
		State:       c.state,
		Result:      result,
		Explanation: Explain(c.result),
		RiskClass:   RiskClass(c.result),
		History:     append([]models.PredictionResult{}, c.history...),
		Failure:     c.failure,
		UpdatedAt:   c.updatedAt,
	}
}

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Alias1177/HeartRisk/internal/storage"
	"github.com/Alias1177/HeartRisk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(i int) models.PredictionResult {
	return models.PredictionResult{Risk: fmt.Sprintf("r%d", i), Probability: float64(i)}
}

func TestPrependCapsAndOrders(t *testing.T) {
	var h []models.PredictionResult
	for n := 1; n <= 8; n++ {
		h = Prepend(h, result(n))

		want := n
		if want > Limit {
			want = Limit
		}
		require.Len(t, h, want)
		assert.Equal(t, result(n), h[0], "newest first after %d submissions", n)
	}

	for i, r := range h {
		assert.Equal(t, result(8-i), r)
	}
}

func TestPrependDoesNotMutateInput(t *testing.T) {
	h := []models.PredictionResult{result(1), result(2), result(3), result(4), result(5)}
	updated := Prepend(h, result(6))

	assert.Equal(t, result(1), h[0])
	assert.Equal(t, result(5), h[4])
	assert.Equal(t, result(6), updated[0])
	assert.Equal(t, result(4), updated[4])
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(storage.NewMemoryStore())
	ctx := context.Background()

	h := []models.PredictionResult{
		{Risk: "High", Probability: 82, Extra: map[string]json.RawMessage{"model": json.RawMessage(`"rf"`)}},
		{Risk: "Low", Probability: 12},
	}
	require.NoError(t, repo.Save(ctx, "prediction_history", h))

	loaded, err := repo.Load(ctx, "prediction_history")
	require.NoError(t, err)
	assert.Equal(t, h, loaded)
}

func TestRepositoryLoadDefaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "malformed JSON", payload: `{not json`, want: 0},
		{name: "wrong shape", payload: `{"risk":"High"}`, want: 0},
		{name: "null", payload: `null`, want: 0},
		{name: "oversized", payload: `[{"risk":"a"},{"risk":"b"},{"risk":"c"},{"risk":"d"},{"risk":"e"},{"risk":"f"},{"risk":"g"}]`, want: Limit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := storage.NewMemoryStore()
			require.NoError(t, blobs.Put(ctx, "k", []byte(tt.payload)))

			loaded, err := NewRepository(blobs).Load(ctx, "k")
			require.NoError(t, err)
			assert.NotNil(t, loaded)
			assert.Len(t, loaded, tt.want)
		})
	}

	loaded, err := NewRepository(storage.NewMemoryStore()).Load(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

type failingBlobs struct{}

func (failingBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingBlobs) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("disk on fire")
}

func TestRepositoryBackendErrors(t *testing.T) {
	repo := NewRepository(failingBlobs{})
	ctx := context.Background()

	loaded, err := repo.Load(ctx, "k")
	assert.Error(t, err)
	assert.Empty(t, loaded)

	assert.Error(t, repo.Save(ctx, "k", nil))
}

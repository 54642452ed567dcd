package models

import "context"

type Predictor interface {
	Predict(ctx context.Context, req PredictionRequest) (*PredictionResult, error)
}

type HistoryStore interface {
	Load(ctx context.Context, key string) ([]PredictionResult, error)
	Save(ctx context.Context, key string, history []PredictionResult) error
}

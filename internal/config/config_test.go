package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "PREDICT_URL", "REQUEST_TIMEOUT", "PREDICT_MAX_RETRIES", "STORAGE_DRIVER", "HISTORY_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.PredictURL != "http://localhost:5000/predict" {
		t.Errorf("PredictURL = %q", cfg.PredictURL)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if cfg.StorageDriver != "file" {
		t.Errorf("StorageDriver = %q, want file", cfg.StorageDriver)
	}
	if cfg.HistoryKey != "prediction_history" {
		t.Errorf("HistoryKey = %q", cfg.HistoryKey)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PREDICT_URL", "http://model:9000/predict")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("PREDICT_MAX_RETRIES", "2")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SESSION_IDLE_TIMEOUT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PredictURL != "http://model:9000/predict" {
		t.Errorf("PredictURL = %q", cfg.PredictURL)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
	if cfg.StorageDriver != "sqlite" {
		t.Errorf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.SessionIdleTimeout() != 24*time.Hour {
		t.Errorf("SessionIdleTimeout() = %v, want fallback 24h", cfg.SessionIdleTimeout())
	}
}

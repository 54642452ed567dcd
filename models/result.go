package models

import (
	"encoding/json"
	"fmt"
)

// PredictionResult is the prediction service response.
// Fields other than risk and probability are kept in Extra and written back unchanged.
type PredictionResult struct {
	Risk        string                     `json:"risk"`
	Probability float64                    `json:"probability"`
	Extra       map[string]json.RawMessage `json:"-"`
}

// IsHigh reports whether the result carries the high risk label
func (r PredictionResult) IsHigh() bool {
	return r.Risk == RiskHigh
}

func (r *PredictionResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out PredictionResult
	if v, ok := raw["risk"]; ok {
		if err := json.Unmarshal(v, &out.Risk); err != nil {
			return fmt.Errorf("risk: %w", err)
		}
		delete(raw, "risk")
	}
	if v, ok := raw["probability"]; ok {
		if err := json.Unmarshal(v, &out.Probability); err != nil {
			return fmt.Errorf("probability: %w", err)
		}
		delete(raw, "probability")
	}
	if len(raw) > 0 {
		out.Extra = raw
	}

	*r = out
	return nil
}

func (r PredictionResult) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(r.Extra)+2)
	for k, v := range r.Extra {
		fields[k] = v
	}
	fields["risk"] = r.Risk
	fields["probability"] = r.Probability
	return json.Marshal(fields)
}

// MarshalYAML flattens pass-through fields next to risk and probability
func (r PredictionResult) MarshalYAML() (interface{}, error) {
	fields := make(map[string]interface{}, len(r.Extra)+2)
	for k, v := range r.Extra {
		var decoded interface{}
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		fields[k] = decoded
	}
	fields["risk"] = r.Risk
	fields["probability"] = r.Probability
	return fields, nil
}

package models

import (
	"time"
)

// Form field names as they appear in the HTML form, the JSON API and the prediction payload
const (
	FieldAge      = "age"
	FieldSex      = "sex"
	FieldTrestbps = "trestbps"
	FieldChol     = "chol"
	FieldFbs      = "fbs"
	FieldThalach  = "thalach"
	FieldExang    = "exang"
	FieldOldpeak  = "oldpeak"
)

// FormFields lists every field of FormInput in display order
var FormFields = []string{
	FieldAge, FieldSex, FieldTrestbps, FieldChol, FieldFbs, FieldThalach, FieldExang, FieldOldpeak,
}

// RiskHigh is the only risk label treated as high; anything else counts as low
const RiskHigh = "High"

// FormInput holds the raw user entries exactly as typed
type FormInput struct {
	Age      string `json:"age" yaml:"age"`
	Sex      string `json:"sex" yaml:"sex"`
	Trestbps string `json:"trestbps" yaml:"trestbps"` // resting blood pressure, mm Hg
	Chol     string `json:"chol" yaml:"chol"`         // cholesterol, mg/dL
	Fbs      string `json:"fbs" yaml:"fbs"`           // fasting blood sugar > 120 mg/dL, 1 or 0
	Thalach  string `json:"thalach" yaml:"thalach"`   // max heart rate
	Exang    string `json:"exang" yaml:"exang"`       // exercise-induced chest pain, 1 or 0
	Oldpeak  string `json:"oldpeak" yaml:"oldpeak"`   // ST depression
}

// Set overwrites a single field by name. It reports false for unknown names.
func (f *FormInput) Set(name, value string) bool {
	switch name {
	case FieldAge:
		f.Age = value
	case FieldSex:
		f.Sex = value
	case FieldTrestbps:
		f.Trestbps = value
	case FieldChol:
		f.Chol = value
	case FieldFbs:
		f.Fbs = value
	case FieldThalach:
		f.Thalach = value
	case FieldExang:
		f.Exang = value
	case FieldOldpeak:
		f.Oldpeak = value
	default:
		return false
	}
	return true
}

// Get returns a field value by name
func (f FormInput) Get(name string) string {
	switch name {
	case FieldAge:
		return f.Age
	case FieldSex:
		return f.Sex
	case FieldTrestbps:
		return f.Trestbps
	case FieldChol:
		return f.Chol
	case FieldFbs:
		return f.Fbs
	case FieldThalach:
		return f.Thalach
	case FieldExang:
		return f.Exang
	case FieldOldpeak:
		return f.Oldpeak
	}
	return ""
}

// ValidationErrors maps a field name to the message shown next to it
type ValidationErrors map[string]string

// PredictionRequest is the payload sent to the prediction service.
// Field order follows the feature order the model was trained on.
type PredictionRequest struct {
	Age      float64 `json:"age"`
	Sex      float64 `json:"sex"`
	Cp       float64 `json:"cp"`
	Trestbps float64 `json:"trestbps"`
	Chol     float64 `json:"chol"`
	Fbs      float64 `json:"fbs"`
	Restecg  float64 `json:"restecg"`
	Thalach  float64 `json:"thalach"`
	Exang    float64 `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    float64 `json:"slope"`
	Ca       float64 `json:"ca"`
	Thal     float64 `json:"thal"`
}

// SubmitState is the lifecycle position of a risk check submission
type SubmitState string

const (
	StateIdle       SubmitState = "idle"
	StateValidating SubmitState = "validating"
	StateInvalid    SubmitState = "invalid"
	StateRequesting SubmitState = "requesting"
	StateSucceeded  SubmitState = "succeeded"
	StateFailed     SubmitState = "failed"
)

// Snapshot is an immutable copy of the controller state handed to renderers
type Snapshot struct {
	Form        FormInput          `json:"form"`
	Errors      ValidationErrors   `json:"errors"`
	State       SubmitState        `json:"state"`
	Result      *PredictionResult  `json:"result,omitempty"`
	Explanation string             `json:"explanation,omitempty"`
	RiskClass   string             `json:"risk_class,omitempty"`
	History     []PredictionResult `json:"history"`
	Failure     string             `json:"failure,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// HasResult reports whether a prediction has been received
func (s Snapshot) HasResult() bool {
	return s.Result != nil
}

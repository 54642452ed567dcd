package riskcheck

import "github.com/Alias1177/HeartRisk/models"

// Values the service expects but the form never asks for
const (
	defaultCp      = 0
	defaultRestecg = 0
	defaultSlope   = 1
	defaultCa      = 0
	defaultThal    = 2

	// used when the optional inputs are left blank
	defaultThalach = 150
	defaultOldpeak = 0
)

// BuildRequest converts the raw form into the prediction payload.
// Blank or non-numeric fields become zero unless a fallback is defined.
func BuildRequest(form models.FormInput) models.PredictionRequest {
	return models.PredictionRequest{
		Age:      number(form.Age, 0),
		Sex:      number(form.Sex, 0),
		Cp:       defaultCp,
		Trestbps: number(form.Trestbps, 0),
		Chol:     number(form.Chol, 0),
		Fbs:      number(form.Fbs, 0),
		Restecg:  defaultRestecg,
		Thalach:  number(form.Thalach, defaultThalach),
		Exang:    number(form.Exang, 0),
		Oldpeak:  number(form.Oldpeak, defaultOldpeak),
		Slope:    defaultSlope,
		Ca:       defaultCa,
		Thal:     defaultThal,
	}
}

func number(raw string, fallback float64) float64 {
	if value, ok := parseNumber(raw); ok {
		return value
	}
	return fallback
}

package riskcheck

import (
	"math"
	"strconv"
	"strings"

	"github.com/Alias1177/HeartRisk/models"
)

// Bound is an inclusive numeric range a field must fall into
type Bound struct {
	Field   string
	Min     float64
	Max     float64
	Message string
}

// Bounds are the only checks applied; every other field is accepted as typed
var Bounds = []Bound{
	{Field: models.FieldAge, Min: 1, Max: 120, Message: "Enter a valid age (1–120)"},
	{Field: models.FieldTrestbps, Min: 80, Max: 200, Message: "BP should be between 80–200 mm Hg"},
	{Field: models.FieldChol, Min: 100, Max: 400, Message: "Cholesterol should be 100–400 mg/dL"},
}

// Validate checks the bounded fields. A blank or non-numeric value fails its check.
func Validate(form models.FormInput) models.ValidationErrors {
	errs := models.ValidationErrors{}
	for _, b := range Bounds {
		value, ok := parseNumber(form.Get(b.Field))
		if !ok || value < b.Min || value > b.Max {
			errs[b.Field] = b.Message
		}
	}
	return errs
}

// parseNumber reports false for blank, non-numeric or non-finite input
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

package riskcheck

import "github.com/Alias1177/HeartRisk/models"

const (
	HighRiskExplanation = "Higher risk may be influenced by elevated blood pressure, cholesterol, blood sugar, or exercise-related chest pain."
	LowRiskExplanation  = "Lower risk indicates that key heart health indicators are within safer ranges."
)

// Explain returns the sentence shown under a result, or "" when there is none
func Explain(result *models.PredictionResult) string {
	if result == nil {
		return ""
	}
	if result.IsHigh() {
		return HighRiskExplanation
	}
	return LowRiskExplanation
}

// RiskClass is the style hint for the result panel
func RiskClass(result *models.PredictionResult) string {
	if result == nil {
		return ""
	}
	if result.IsHigh() {
		return "high"
	}
	return "low"
}

package triage

import (
	"fmt"
	"strings"
)

// GuidanceFallback replaces the model's guidance whenever the completion
// fails. It never changes the computed urgency.
const GuidanceFallback = "Unable to analyze symptoms at this time. If you are experiencing severe symptoms, please contact your healthcare provider immediately."

// EmergencyProtocol is shown alongside an emergency classification.
const EmergencyProtocol = "Based on your symptoms, you should seek immediate medical attention. Contact emergency services (911) or go to the nearest emergency room."

func guidancePrompt(r SymptomReport) string {
	return fmt.Sprintf(`As MedGemma, analyze these cardiac symptoms for triage:

Selected Symptoms: %s
Pain/Discomfort Level: %d/10
Additional Description: %q

Patient Context: Post-cardiac intervention patient (CABG)

Please provide:
1. Urgency level (low/medium/high/emergency)
2. Possible causes or explanations
3. Immediate action recommendations
4. When to seek medical attention
5. Self-care measures if appropriate
6. Red flags to watch for

Format as clear, actionable guidance for a cardiac patient.`,
		strings.Join(r.Symptoms.Tags(), ", "), r.PainLevel, r.Notes)
}

func emergencyAlert(patient string, r SymptomReport) string {
	if patient == "" {
		patient = "Unknown patient"
	}
	return fmt.Sprintf("EMERGENCY symptom report\nPatient: %s\nSymptoms: %s\nPain: %d/10 (%s)\nNotes: %s",
		patient, strings.Join(r.Symptoms.Tags(), ", "), r.PainLevel, PainSeverity(r.PainLevel), r.Notes)
}

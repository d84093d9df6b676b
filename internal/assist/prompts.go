package assist

import (
	"fmt"
	"strings"
)

const (
	EncouragementFallback = "Great job tracking your medications! Remember, taking your heart medications as prescribed is one of the best things you can do for your recovery. Keep up the good work!"
	SideEffectFallback    = "Unable to analyze at this time. Please contact your healthcare provider if you have concerns."
	SimplifyFallback      = "Sorry, I had trouble simplifying that instruction. Please try again or contact your healthcare team."
)

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func encouragementPrompt(adherence int, taken, missed []string) string {
	return fmt.Sprintf(`As a supportive healthcare assistant for cardiac patients, provide encouraging feedback about medication adherence.

Adherence rate: %d%%
Medications taken: %s
Medications missed: %s

Please provide:
1. Encouraging words (even if adherence is low)
2. Brief reminder about importance for heart health
3. Gentle suggestion if medications were missed
4. Keep it warm, supportive, and under 100 words

Do not provide medical advice, just encouragement and general reminders.`,
		adherence, joinOrNone(taken), joinOrNone(missed))
}

func sideEffectPrompt(name, dosage, report string, known []string) string {
	return fmt.Sprintf(`As MedGemma, analyze this side effect report for %s (%s):

Patient Report: %q

Known Side Effects: %s

Please provide:
1. Severity assessment (mild/moderate/severe)
2. Whether this matches known side effects
3. Immediate recommendations
4. When to contact healthcare provider
5. Any drug interactions to consider

Keep response concise and actionable for a cardiac patient.`,
		name, dosage, report, joinOrNone(known))
}

func simplifyPrompt(kind InstructionKind, text string) string {
	switch kind {
	case KindPreOp:
		return fmt.Sprintf(`Please simplify the following pre-operative medical instruction for a cardiac patient. Make it clear, easy to understand, and empathetic. Focus on what the patient needs to do and why it's important for their safety:

%q

Please provide a simplified, patient-friendly version.`, text)
	case KindPostOp:
		return fmt.Sprintf(`Please simplify the following post-operative cardiac care instruction for a patient. Make it clear, actionable, and include visual cues or icons where helpful. Be empathetic and focus on patient safety:

%q

Please provide a simplified, patient-friendly version with clear steps and any important warnings.`, text)
	default:
		return fmt.Sprintf(`Simplify this medical instruction for a cardiac patient to understand easily:

%q

Make it:
- Clear and easy to understand
- Action-oriented
- Empathetic in tone
- Include why it's important for their heart health

Keep it concise but complete.`, text)
	}
}

func personalizePrompt(request string) string {
	return fmt.Sprintf(`As MedGemma, create personalized instructions for a cardiac patient who has undergone CABG surgery:

Patient Request: %q

Patient Profile:
- Post-CABG surgery
- Taking aspirin, metoprolol, atorvastatin
- Allergies: Penicillin, Shellfish
- Risk factors: Hypertension, High Cholesterol

Please provide:
1. Detailed medical instruction
2. Simplified patient-friendly version
3. Priority level (1-3, where 1 is highest)
4. Instruction category (pre-op/post-op/medication/lifestyle)

Format as structured, actionable guidance tailored to this specific patient.`, request)
}

package agent

import (
	"context"
	"strings"
	"time"
)

// MockClient answers with canned guidance chosen by keyword. It stands in for
// the model when no API key is configured.
type MockClient struct {
	// Delay simulates model latency.
	Delay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return MockResponse(prompt), nil
}

// MockResponse picks the canned response for prompt.
func MockResponse(prompt string) string {
	p := strings.ToLower(prompt)

	switch {
	case strings.Contains(p, "emergency") || strings.Contains(p, "severe pain") || strings.Contains(p, "chest pain"):
		return mockEmergency
	case strings.Contains(p, "side effect") || strings.Contains(p, "medication"):
		return mockMedication
	case strings.Contains(p, "simplify") && strings.Contains(p, "pre-op"):
		return mockPreOp
	case strings.Contains(p, "simplify") && strings.Contains(p, "post-op"):
		return mockPostOp
	case strings.Contains(p, "symptoms") || strings.Contains(p, "feeling"):
		return mockSymptoms
	default:
		return mockDefault
	}
}

const mockEmergency = `**IMPORTANT**: If you're experiencing severe symptoms, please contact emergency services immediately.

**Call 911 if you have:**
- Severe chest pain
- Difficulty breathing
- Loss of consciousness
- Severe bleeding

**Contact your cardiologist immediately for:**
- New or worsening symptoms
- Concerning changes in your condition

For non-emergency questions, I'm here to help with general guidance.`

const mockMedication = `Here's some general guidance about medication side effects:

**Mild side effects** (nausea, mild dizziness):
- Monitor symptoms and note when they occur
- Take medications with food if recommended
- Stay hydrated

**Contact your healthcare provider if you experience:**
- Severe or worsening side effects
- New symptoms after starting medication

**Emergency signs** (difficulty breathing, severe allergic reactions): call 911 immediately.

Never stop cardiac medications without consulting your doctor first.`

const mockPreOp = `Here's a simplified pre-surgery checklist:

**No Food or Drinks**: Stop eating and drinking after midnight before your surgery. This keeps you safe during anesthesia.

**Clean Up**: Shower with the antibacterial soap your team gave you.

**Medications**: Only take the medications your doctor said to take. Bring your medication list.

**Questions**: Contact your surgical team if anything is unclear.`

const mockPostOp = `Here's what you need to know after surgery:

**Keep Your Incision Clean**: Gently wash with soap and water, then pat dry.

**Take It Easy**: No lifting anything heavier than 10 pounds for 6 weeks.

**Take Your Medications**: Don't skip doses, even if you feel better.

**Call Your Doctor If**: You have a fever over 101°F, severe pain, or unusual swelling.

Call 911 for severe chest pain or difficulty breathing.`

const mockSymptoms = `Let me help assess your symptoms.

**Normal recovery symptoms may include:**
- Mild fatigue and tiredness
- Some discomfort at the incision site

**Please contact your healthcare team if you experience:**
- Significant shortness of breath
- Fever over 101°F (38.3°C)
- Unusual swelling or rapid weight gain

**Call 911 immediately for** severe chest pain, difficulty breathing or loss of consciousness.`

const mockDefault = `Thank you for your question. I'm here to provide general support and information about cardiac care.

**For immediate medical concerns:**
- Call 911 for emergencies
- Contact your cardiologist for urgent questions

**Remember**: This information is for educational purposes only. For personalized medical advice, always consult your healthcare team.`

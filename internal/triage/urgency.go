package triage

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	MinPainLevel = 0
	MaxPainLevel = 10
)

// ErrInvalidInput is wrapped by every rejected classification input.
var ErrInvalidInput = errors.New("invalid input")

// UrgencyLevel is ordered: Low < Medium < High < Emergency.
type UrgencyLevel int

const (
	UrgencyLow UrgencyLevel = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyEmergency
)

var urgencyNames = [...]string{"low", "medium", "high", "emergency"}

var urgencyLabels = [...]string{"Low Priority", "Medium Priority", "High Priority", "EMERGENCY"}

func (u UrgencyLevel) valid() bool {
	return u >= UrgencyLow && u <= UrgencyEmergency
}

func (u UrgencyLevel) String() string {
	if !u.valid() {
		return fmt.Sprintf("UrgencyLevel(%d)", int(u))
	}
	return urgencyNames[u]
}

// Label is the badge text shown to the patient.
func (u UrgencyLevel) Label() string {
	if !u.valid() {
		return ""
	}
	return urgencyLabels[u]
}

func (u UrgencyLevel) RequiresEmergencyProtocol() bool {
	return u == UrgencyEmergency
}

func (u UrgencyLevel) MarshalText() ([]byte, error) {
	if !u.valid() {
		return nil, fmt.Errorf("%w: unknown urgency level %d", ErrInvalidInput, int(u))
	}
	return []byte(urgencyNames[u]), nil
}

func (u *UrgencyLevel) UnmarshalText(b []byte) error {
	for i, name := range urgencyNames {
		if string(b) == name {
			*u = UrgencyLevel(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown urgency level %q", ErrInvalidInput, b)
}

// ValidatePainLevel rejects pain scores outside [0, 10].
func ValidatePainLevel(pain int) error {
	if pain < MinPainLevel || pain > MaxPainLevel {
		return fmt.Errorf("%w: pain level %d outside [%d, %d]", ErrInvalidInput, pain, MinPainLevel, MaxPainLevel)
	}
	return nil
}

// ParsePainLevel converts a decoded JSON number into a pain level. Fractional
// and out-of-range values are rejected, never rounded or clamped. An absent
// value is the slider's resting position, 0.
func ParsePainLevel(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: pain level %s is not an integer", ErrInvalidInput, n)
	}
	if v < MinPainLevel || v > MaxPainLevel {
		return 0, fmt.Errorf("%w: pain level %d outside [%d, %d]", ErrInvalidInput, v, MinPainLevel, MaxPainLevel)
	}
	return int(v), nil
}

// ClassifyUrgency maps a symptom set and pain score to an urgency level. Rules
// are evaluated in order and the first match wins:
//
//	pain >= 7, or a high-risk symptom with pain >= 5  -> emergency
//	a high-risk symptom, or pain >= 5                 -> high
//	three or more symptoms, or pain >= 3              -> medium
//	otherwise                                         -> low
func ClassifyUrgency(symptoms SymptomSet, painLevel int) (UrgencyLevel, error) {
	if err := ValidatePainLevel(painLevel); err != nil {
		return UrgencyLow, err
	}

	hasHighRisk := symptoms.HasHighRisk()

	switch {
	case painLevel >= 7 || (hasHighRisk && painLevel >= 5):
		return UrgencyEmergency, nil
	case hasHighRisk || painLevel >= 5:
		return UrgencyHigh, nil
	case symptoms.Len() >= 3 || painLevel >= 3:
		return UrgencyMedium, nil
	default:
		return UrgencyLow, nil
	}
}

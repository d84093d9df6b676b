package triage

import (
	"encoding/json"
	"errors"
	"testing"
)

// allSubsets enumerates every subset of the vocabulary plus one unknown tag.
func allSubsets() []SymptomSet {
	tags := append(append([]string{}, Vocabulary...), "Headache")
	subsets := make([]SymptomSet, 0, 1<<len(tags))
	for mask := 0; mask < 1<<len(tags); mask++ {
		var picked []string
		for i, tag := range tags {
			if mask&(1<<i) != 0 {
				picked = append(picked, tag)
			}
		}
		subsets = append(subsets, NewSymptomSet(picked...))
	}
	return subsets
}

func mustClassify(t *testing.T, s SymptomSet, pain int) UrgencyLevel {
	t.Helper()
	got, err := ClassifyUrgency(s, pain)
	if err != nil {
		t.Fatalf("ClassifyUrgency(%v, %d): unexpected error %v", s.Tags(), pain, err)
	}
	return got
}

func TestClassifyUrgency_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		symptoms []string
		pain     int
		want     UrgencyLevel
	}{
		{"nothing reported", nil, 0, UrgencyLow},
		{"pain alone reaches high", []string{"Fatigue or weakness"}, 5, UrgencyHigh},
		{"high-risk symptom with low pain", []string{"Chest pain or discomfort"}, 4, UrgencyHigh},
		{"high pain with high-risk symptom", []string{"Chest pain or discomfort"}, 7, UrgencyEmergency},
		{"moderate pain with high-risk symptom", []string{"Chest pain or discomfort"}, 5, UrgencyEmergency},
		{"mild dizziness", []string{"Dizziness or lightheadedness"}, 2, UrgencyLow},
		{"worst chest pain", []string{"Chest pain or discomfort"}, 10, UrgencyEmergency},
		{"three mild symptoms", []string{"Fatigue or weakness", "Nausea or vomiting", "Excessive sweating"}, 0, UrgencyMedium},
		{"duplicates collapse", []string{"Fatigue or weakness", "Fatigue or weakness", "Nausea or vomiting"}, 0, UrgencyLow},
		{"unknown tags count toward size", []string{"Headache", "Insomnia", "Cough"}, 1, UrgencyMedium},
		{"pain three", nil, 3, UrgencyMedium},
		{"pain seven without symptoms", nil, 7, UrgencyEmergency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustClassify(t, NewSymptomSet(tt.symptoms...), tt.pain); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyUrgency_Properties(t *testing.T) {
	for _, s := range allSubsets() {
		for pain := MinPainLevel; pain <= MaxPainLevel; pain++ {
			got := mustClassify(t, s, pain)
			risk := s.HasHighRisk()

			switch {
			case pain >= 7:
				if got != UrgencyEmergency {
					t.Fatalf("%v pain=%d: want emergency for pain >= 7, got %s", s.Tags(), pain, got)
				}
			case risk && pain >= 5:
				if got != UrgencyEmergency {
					t.Fatalf("%v pain=%d: want emergency for high-risk with pain 5-6, got %s", s.Tags(), pain, got)
				}
			case risk:
				if got != UrgencyHigh {
					t.Fatalf("%v pain=%d: want high for high-risk with pain 0-4, got %s", s.Tags(), pain, got)
				}
			case pain >= 5:
				if got != UrgencyHigh {
					t.Fatalf("%v pain=%d: want high for pain 5-6 without high-risk, got %s", s.Tags(), pain, got)
				}
			case s.Len() >= 3 || pain >= 3:
				if got != UrgencyMedium {
					t.Fatalf("%v pain=%d: want medium, got %s", s.Tags(), pain, got)
				}
			default:
				if got != UrgencyLow {
					t.Fatalf("%v pain=%d: want low, got %s", s.Tags(), pain, got)
				}
			}

			if again := mustClassify(t, s, pain); again != got {
				t.Fatalf("%v pain=%d: not deterministic (%s then %s)", s.Tags(), pain, got, again)
			}
		}
	}
}

func TestClassifyUrgency_MonotonicInPain(t *testing.T) {
	for _, s := range allSubsets() {
		prev := UrgencyLow
		for pain := MinPainLevel; pain <= MaxPainLevel; pain++ {
			got := mustClassify(t, s, pain)
			if got < prev {
				t.Fatalf("%v: urgency dropped from %s to %s at pain %d", s.Tags(), prev, got, pain)
			}
			prev = got
		}
	}
}

func TestClassifyUrgency_InvalidPain(t *testing.T) {
	for _, pain := range []int{-1, 11, -100, 1000} {
		if _, err := ClassifyUrgency(NewSymptomSet("Shortness of breath"), pain); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("pain %d: expected ErrInvalidInput, got %v", pain, err)
		}
	}
}

func TestParsePainLevel(t *testing.T) {
	tests := []struct {
		in      json.Number
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"10", 10, false},
		{"4", 4, false},
		{"4.5", 0, true},
		{"5.0", 0, true},
		{"-1", 0, true},
		{"11", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePainLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParsePainLevel(%q): expected ErrInvalidInput, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePainLevel(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestUrgencyLevel_Presentation(t *testing.T) {
	tests := []struct {
		level     UrgencyLevel
		name      string
		label     string
		emergency bool
	}{
		{UrgencyLow, "low", "Low Priority", false},
		{UrgencyMedium, "medium", "Medium Priority", false},
		{UrgencyHigh, "high", "High Priority", false},
		{UrgencyEmergency, "emergency", "EMERGENCY", true},
	}

	for _, tt := range tests {
		if tt.level.String() != tt.name || tt.level.Label() != tt.label || tt.level.RequiresEmergencyProtocol() != tt.emergency {
			t.Errorf("%d: got (%s, %s, %v)", tt.level, tt.level, tt.level.Label(), tt.level.RequiresEmergencyProtocol())
		}

		b, err := json.Marshal(tt.level)
		if err != nil || string(b) != `"`+tt.name+`"` {
			t.Errorf("marshal %s: got %s, %v", tt.name, b, err)
		}
		var back UrgencyLevel
		if err := json.Unmarshal(b, &back); err != nil || back != tt.level {
			t.Errorf("unmarshal %s: got %s, %v", b, back, err)
		}
	}

	var u UrgencyLevel
	if err := u.UnmarshalText([]byte("critical")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown level, got %v", err)
	}
}

func TestPainSeverity(t *testing.T) {
	tests := map[int]string{0: "None", 1: "Very Mild", 5: "Moderate-Severe", 9: "Critical", 10: "Emergency", 11: "", -1: ""}
	for level, want := range tests {
		if got := PainSeverity(level); got != want {
			t.Errorf("PainSeverity(%d) = %q, want %q", level, got, want)
		}
	}
}

func TestSymptomReport_Empty(t *testing.T) {
	if !(SymptomReport{Notes: "   "}).Empty() {
		t.Error("blank notes with no symptoms should be empty")
	}
	if (SymptomReport{Notes: "tired"}).Empty() {
		t.Error("notes alone should not be empty")
	}
	if (SymptomReport{Symptoms: NewSymptomSet("Back or jaw pain")}).Empty() {
		t.Error("a symptom alone should not be empty")
	}
}

package triage

import (
	"sort"
	"strings"
)

// Vocabulary is the fixed list of symptom tags offered to patients, in display
// order.
var Vocabulary = []string{
	"Chest pain or discomfort",
	"Shortness of breath",
	"Fatigue or weakness",
	"Irregular heartbeat",
	"Swelling in legs or feet",
	"Dizziness or lightheadedness",
	"Nausea or vomiting",
	"Excessive sweating",
	"Back or jaw pain",
	"Arm pain or numbness",
}

var highRiskSymptoms = map[string]struct{}{
	"Chest pain or discomfort": {},
	"Shortness of breath":      {},
	"Irregular heartbeat":      {},
}

// SymptomSet is a set of symptom tags. Tags outside Vocabulary are kept and
// counted but get no special handling.
type SymptomSet map[string]struct{}

// NewSymptomSet builds a set from tags. Duplicates collapse and blank tags are
// dropped.
func NewSymptomSet(tags ...string) SymptomSet {
	s := make(SymptomSet, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		s[t] = struct{}{}
	}
	return s
}

func (s SymptomSet) Len() int { return len(s) }

func (s SymptomSet) Contains(tag string) bool {
	_, ok := s[tag]
	return ok
}

// HasHighRisk reports whether any cardiac red-flag symptom is present.
func (s SymptomSet) HasHighRisk() bool {
	for tag := range s {
		if _, ok := highRiskSymptoms[tag]; ok {
			return true
		}
	}
	return false
}

// Tags returns the tags in vocabulary order, then unknown tags sorted.
func (s SymptomSet) Tags() []string {
	out := make([]string, 0, len(s))
	known := make(map[string]struct{}, len(Vocabulary))
	for _, v := range Vocabulary {
		known[v] = struct{}{}
		if s.Contains(v) {
			out = append(out, v)
		}
	}
	var extra []string
	for tag := range s {
		if _, ok := known[tag]; !ok {
			extra = append(extra, tag)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// SymptomReport is one patient-initiated classification request. It is built
// per request and never stored.
type SymptomReport struct {
	Symptoms  SymptomSet
	PainLevel int
	Notes     string
}

// Empty reports whether there is nothing to assess.
func (r SymptomReport) Empty() bool {
	return r.Symptoms.Len() == 0 && strings.TrimSpace(r.Notes) == ""
}

var painSeverity = [...]string{
	"None",
	"Very Mild",
	"Mild",
	"Mild-Moderate",
	"Moderate",
	"Moderate-Severe",
	"Severe",
	"Very Severe",
	"Extremely Severe",
	"Critical",
	"Emergency",
}

// PainSeverity returns the label shown next to the pain slider. Out-of-range
// levels get an empty string.
func PainSeverity(level int) string {
	if level < MinPainLevel || level > MaxPainLevel {
		return ""
	}
	return painSeverity[level]
}

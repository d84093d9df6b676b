package triage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	block   chan struct{}
}

func (f *fakeCompleter) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

type fakeAlerter struct {
	sent chan string
	err  error
}

func (f *fakeAlerter) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.sent <- text
	return f.err
}

func TestAssess_CombinesUrgencyAndGuidance(t *testing.T) {
	c := &fakeCompleter{reply: "Rest and monitor."}
	svc := NewService(c, nil, 0)

	report := SymptomReport{Symptoms: NewSymptomSet("Fatigue or weakness"), PainLevel: 2, Notes: "tired after walking"}
	a, err := svc.Assess(context.Background(), report, "Sarah Johnson")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Urgency != UrgencyLow || a.Label != "Low Priority" {
		t.Errorf("unexpected urgency %s (%s)", a.Urgency, a.Label)
	}
	if a.Guidance != "Rest and monitor." || a.GuidanceFallback {
		t.Errorf("unexpected guidance %q (fallback=%v)", a.Guidance, a.GuidanceFallback)
	}
	if a.PainSeverity != "Mild" {
		t.Errorf("expected pain severity Mild, got %q", a.PainSeverity)
	}
	if a.EmergencyProtocol != "" {
		t.Error("emergency protocol must only be set for emergencies")
	}

	if len(c.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(c.prompts))
	}
	for _, want := range []string{"Fatigue or weakness", "2/10", "tired after walking"} {
		if !strings.Contains(c.prompts[0], want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAssess_CompletionFailureKeepsUrgency(t *testing.T) {
	tests := []struct {
		name   string
		report SymptomReport
		want   UrgencyLevel
	}{
		{"emergency", SymptomReport{Symptoms: NewSymptomSet("Chest pain or discomfort"), PainLevel: 5}, UrgencyEmergency},
		{"high", SymptomReport{Symptoms: NewSymptomSet("Shortness of breath"), PainLevel: 1}, UrgencyHigh},
		{"low", SymptomReport{Notes: "slight headache"}, UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeCompleter{err: errors.New("model unavailable")}, nil, 0)
			a, err := svc.Assess(context.Background(), tt.report, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Urgency != tt.want {
				t.Errorf("completion failure changed urgency: got %s, want %s", a.Urgency, tt.want)
			}
			if a.Guidance != GuidanceFallback || !a.GuidanceFallback {
				t.Errorf("expected fallback guidance, got %q", a.Guidance)
			}
		})
	}
}

func TestAssess_RejectsInvalidReports(t *testing.T) {
	c := &fakeCompleter{reply: "x"}
	svc := NewService(c, nil, 0)

	if _, err := svc.Assess(context.Background(), SymptomReport{}, ""); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("expected ErrEmptyReport, got %v", err)
	}
	if _, err := svc.Assess(context.Background(), SymptomReport{Notes: "pain", PainLevel: 11}, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if len(c.prompts) != 0 {
		t.Error("invalid reports must not reach the model")
	}
}

func TestAssess_EmergencyAlertsCareTeam(t *testing.T) {
	alerter := &fakeAlerter{sent: make(chan string, 1), err: errors.New("telegram down")}
	svc := NewService(&fakeCompleter{reply: "Call 911."}, alerter, 42)

	report := SymptomReport{Symptoms: NewSymptomSet("Irregular heartbeat"), PainLevel: 8}
	a, err := svc.Assess(context.Background(), report, "Sarah Johnson")
	if err != nil {
		t.Fatalf("alert failure must not fail the assessment: %v", err)
	}
	if !a.RequiresEmergencyProtocol || a.EmergencyProtocol != EmergencyProtocol {
		t.Error("expected emergency protocol")
	}

	select {
	case msg := <-alerter.sent:
		if !strings.Contains(msg, "Sarah Johnson") || !strings.Contains(msg, "8/10") {
			t.Errorf("unexpected alert %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected care team alert")
	}
}

func TestAssess_NoAlertBelowEmergency(t *testing.T) {
	alerter := &fakeAlerter{sent: make(chan string, 1)}
	svc := NewService(&fakeCompleter{reply: "ok"}, alerter, 42)

	if _, err := svc.Assess(context.Background(), SymptomReport{Symptoms: NewSymptomSet("Shortness of breath"), PainLevel: 4}, ""); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-alerter.sent:
		t.Errorf("unexpected alert %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStream_UrgencyDoesNotWaitForGuidance(t *testing.T) {
	c := &fakeCompleter{reply: "guidance", block: make(chan struct{})}
	svc := NewService(c, nil, 0)

	events := make(chan Event, 2)
	done := make(chan error, 1)
	go func() {
		done <- svc.Stream(context.Background(), SymptomReport{Symptoms: NewSymptomSet("Shortness of breath"), PainLevel: 6}, "", events)
	}()

	select {
	case e := <-events:
		if e.Type != EventUrgency {
			t.Fatalf("expected urgency first while guidance is pending, got %s", e.Type)
		}
		if res := e.Data.(UrgencyResult); res.Urgency != UrgencyEmergency {
			t.Errorf("expected emergency, got %s", res.Urgency)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("urgency event was blocked by the pending completion")
	}

	close(c.block)
	e := <-events
	if e.Type != EventGuidance || e.Data.(GuidanceResult).Guidance != "guidance" {
		t.Errorf("unexpected guidance event %+v", e)
	}
	if err := <-done; err != nil {
		t.Errorf("unexpected stream error: %v", err)
	}
}

func TestStream_CancelledContextStops(t *testing.T) {
	c := &fakeCompleter{reply: "never", block: make(chan struct{})}
	svc := NewService(c, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event)
	done := make(chan error, 1)
	go func() {
		done <- svc.Stream(ctx, SymptomReport{Notes: "dizzy"}, "", events)
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}

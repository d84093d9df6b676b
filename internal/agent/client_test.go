package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler func(req map[string]any) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiClient_SubmitPrompt(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, func(req map[string]any) (int, string) {
		captured = req
		return http.StatusOK, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Rest and hydrate.  "},"finish_reason":"stop"}]}`
	})

	c := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "gemini-1.5-flash", Timeout: time.Second})
	got, err := c.SubmitPrompt(context.Background(), "I feel tired after walking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Rest and hydrate." {
		t.Errorf("expected trimmed completion, got %q", got)
	}

	if captured["model"] != "gemini-1.5-flash" {
		t.Errorf("expected model gemini-1.5-flash, got %v", captured["model"])
	}
	if captured["max_tokens"] != float64(500) {
		t.Errorf("expected max_tokens 500, got %v", captured["max_tokens"])
	}
	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(msgs))
	}
	system := msgs[0].(map[string]any)["content"].(string)
	if !strings.Contains(system, "CRITICAL SAFETY GUIDELINES") {
		t.Error("expected safety preamble in system message")
	}
	user := msgs[1].(map[string]any)["content"].(string)
	if !strings.Contains(user, "I feel tired after walking") {
		t.Errorf("expected prompt in user message, got %q", user)
	}
}

func TestGeminiClient_NoChoices(t *testing.T) {
	srv := newTestServer(t, func(map[string]any) (int, string) {
		return http.StatusOK, `{"id":"1","object":"chat.completion","choices":[]}`
	})

	c := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	if _, err := c.SubmitPrompt(context.Background(), "hi"); !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestGeminiClient_APIError(t *testing.T) {
	srv := newTestServer(t, func(map[string]any) (int, string) {
		return http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`
	})

	c := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	if _, err := c.SubmitPrompt(context.Background(), "hi"); err == nil {
		t.Error("expected error from failing API")
	}
}

type stubCompleter struct {
	text string
	err  error
}

func (s stubCompleter) SubmitPrompt(context.Context, string) (string, error) {
	return s.text, s.err
}

func TestSubmitWithFallback(t *testing.T) {
	tests := []struct {
		name         string
		completer    Completer
		want         string
		wantFallback bool
	}{
		{"success", stubCompleter{text: "ok"}, "ok", false},
		{"error", stubCompleter{err: errors.New("network down")}, "fallback", true},
		{"empty", stubCompleter{}, "fallback", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, used := SubmitWithFallback(context.Background(), tt.completer, "test", "prompt", "fallback")
			if got != tt.want || used != tt.wantFallback {
				t.Errorf("got (%q, %v), want (%q, %v)", got, used, tt.want, tt.wantFallback)
			}
		})
	}
}

func TestMockResponse_Keywords(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"I have chest pain", mockEmergency},
		{"Is nausea a side effect?", mockMedication},
		{"Please simplify this pre-op instruction", mockPreOp},
		{"Please simplify this post-op instruction", mockPostOp},
		{"I am feeling tired", mockSymptoms},
		{"hello", mockDefault},
	}

	for _, tt := range tests {
		if got := MockResponse(tt.prompt); got != tt.want {
			t.Errorf("MockResponse(%q) picked the wrong response", tt.prompt)
		}
	}
}

func TestMockClient_HonoursContext(t *testing.T) {
	m := &MockClient{Delay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.SubmitPrompt(ctx, "hi"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSubmit_EmptyIsError(t *testing.T) {
	if _, err := Submit(context.Background(), stubCompleter{}, "test", "prompt"); !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}

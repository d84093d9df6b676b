package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendMessage(t *testing.T) {
	var got sendMessageReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN")
	c.BaseURL = srv.URL
	if err := c.SendMessage(context.Background(), 42, "EMERGENCY"); err != nil {
		t.Fatal(err)
	}
	if got.ChatID != 42 || got.Text != "EMERGENCY" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestSendDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if r.FormValue("chat_id") != "7" {
			t.Errorf("unexpected chat_id %q", r.FormValue("chat_id"))
		}
		f, hdr, err := r.FormFile("document")
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(f)
		if hdr.Filename != "report.pdf" || string(data) != "%PDF" {
			t.Errorf("unexpected file %s %q", hdr.Filename, data)
		}
	}))
	defer srv.Close()

	c := NewClient("TOKEN")
	c.BaseURL = srv.URL
	if err := c.SendDocument(context.Background(), 7, []byte("%PDF"), "report.pdf"); err != nil {
		t.Fatal(err)
	}
}

func TestErrors(t *testing.T) {
	if err := NewClient("").SendMessage(context.Background(), 1, "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("TOKEN")
	c.BaseURL = srv.URL
	err := c.SendMessage(context.Background(), 1, "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected telegram description in error, got %v", err)
	}
}

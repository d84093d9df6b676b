package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"patient-care-portal/internal/identity"
)

type fakeCompleter struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeCompleter) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

type fakeTelegram struct {
	sent chan string
}

func (f *fakeTelegram) SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error {
	f.sent <- fileName
	return nil
}

func validRequest() GenerateRequest {
	return GenerateRequest{
		PatientID:            "550e8400-e29b-41d4-a716-446655440000",
		ReportType:           TypeSymptomAssessment,
		UrgencyLevel:         3,
		NaturalLanguageInput: "Patient reports mild chest tightness after climbing stairs.",
		Recipients:           []string{"dr.smith@example.com"},
	}
}

func TestGenerate_StoresReport(t *testing.T) {
	repo := NewMemoryRepository()
	c := &fakeCompleter{reply: "  ASSESSMENT: exertional chest discomfort.  "}
	svc := NewService(repo, c, nil, Options{})

	r, err := svc.Generate(context.Background(), validRequest(), "demo-user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MedicalJargonOutput != "ASSESSMENT: exertional chest discomfort." {
		t.Errorf("expected trimmed completion output, got %q", r.MedicalJargonOutput)
	}
	if r.GeneratedBy != "demo-user" {
		t.Errorf("expected generated_by demo-user, got %q", r.GeneratedBy)
	}

	for _, want := range []string{"symptom_assessment", "Urgency Level: 3/5", "chest tightness"} {
		if !strings.Contains(c.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	stored, err := svc.Get(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("expected stored report: %v", err)
	}
	if stored.UrgencyLevel != 3 || len(stored.Recipients) != 1 {
		t.Errorf("unexpected stored report %+v", stored)
	}
}

func TestGenerate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerateRequest)
		field  string
	}{
		{"empty input", func(r *GenerateRequest) { r.NaturalLanguageInput = "   " }, "natural_language_input"},
		{"unknown type", func(r *GenerateRequest) { r.ReportType = "autopsy" }, "report_type"},
		{"urgency zero", func(r *GenerateRequest) { r.UrgencyLevel = 0 }, "urgency_level"},
		{"urgency six", func(r *GenerateRequest) { r.UrgencyLevel = 6 }, "urgency_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCompleter{reply: "unused"}
			svc := NewService(NewMemoryRepository(), c, nil, Options{})

			req := validRequest()
			tt.mutate(&req)
			_, err := svc.Generate(context.Background(), req, "demo-user")

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected problem on %s, got %v", tt.field, verr.Fields)
			}
			if c.prompt != "" {
				t.Error("completion must not be called for invalid requests")
			}
		})
	}
}

func TestGenerate_CompletionFailureStoresNothing(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeCompleter{err: errors.New("quota exceeded")}, nil, Options{})

	if _, err := svc.Generate(context.Background(), validRequest(), "demo-user"); !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	reports, _ := repo.List(context.Background(), 10)
	if len(reports) != 0 {
		t.Errorf("expected no stored reports, got %d", len(reports))
	}
}

func TestGenerate_DeliverWithoutChatIsSkipped(t *testing.T) {
	tg := &fakeTelegram{sent: make(chan string, 1)}
	svc := NewService(NewMemoryRepository(), &fakeCompleter{reply: "report"}, tg, Options{})

	req := validRequest()
	req.Deliver = true
	if _, err := svc.Generate(context.Background(), req, "demo-user"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case name := <-tg.sent:
		t.Errorf("expected no delivery without a chat ID, got %s", name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := &MedicalReport{ID: uuid.New(), ReportType: TypeCareSummary, UrgencyLevel: 1, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Create(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewService(repo, &fakeCompleter{}, nil, Options{})
	reports, err := svc.List(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(reports))
	}
	if !reports[0].CreatedAt.After(reports[1].CreatedAt) {
		t.Error("expected newest report first")
	}
}

func TestRenderPDF(t *testing.T) {
	r := MedicalReport{
		ID:                  uuid.New(),
		ReportType:          TypeDischargeSummary,
		UrgencyLevel:        2,
		MedicalJargonOutput: strings.Repeat("Patient stable for discharge.\n", 80),
		CreatedAt:           time.Now(),
	}
	data, err := RenderPDF(r, "")
	if errors.Is(err, ErrFontUnavailable) {
		t.Skip("no TTF font installed")
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("expected PDF header")
	}
}

func TestUrgencyLabel(t *testing.T) {
	tests := map[int]string{0: "", 1: "Low", 3: "Moderate", 5: "Critical", 6: ""}
	for level, want := range tests {
		if got := UrgencyLabel(level); got != want {
			t.Errorf("UrgencyLabel(%d) = %q, want %q", level, got, want)
		}
	}
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc))
	return r
}

func withRole(req *http.Request, role identity.Role) *http.Request {
	p := identity.DemoProfile(role)
	return req.WithContext(identity.WithProfile(req.Context(), &p))
}

func TestHandler_Statuses(t *testing.T) {
	body, _ := json.Marshal(validRequest())
	invalid, _ := json.Marshal(GenerateRequest{ReportType: TypeCareSummary, UrgencyLevel: 9})

	tests := []struct {
		name      string
		role      identity.Role
		body      []byte
		completer *fakeCompleter
		want      int
	}{
		{"doctor creates", identity.RoleDoctor, body, &fakeCompleter{reply: "report"}, http.StatusCreated},
		{"nurse creates", identity.RoleNurse, body, &fakeCompleter{reply: "report"}, http.StatusCreated},
		{"patient forbidden", identity.RolePatient, body, &fakeCompleter{reply: "report"}, http.StatusForbidden},
		{"invalid request", identity.RoleDoctor, invalid, &fakeCompleter{reply: "report"}, http.StatusBadRequest},
		{"completion down", identity.RoleSurgeon, body, &fakeCompleter{err: errors.New("down")}, http.StatusServiceUnavailable},
		{"malformed body", identity.RoleDoctor, []byte("{"), &fakeCompleter{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(NewService(NewMemoryRepository(), tt.completer, nil, Options{}))
			req := withRole(httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(tt.body)), tt.role)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_Get(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &fakeCompleter{reply: "report"}, nil, Options{})
	created, err := svc.Generate(context.Background(), validRequest(), "demo-user")
	if err != nil {
		t.Fatal(err)
	}
	h := newRouter(svc)

	tests := []struct {
		path string
		want int
	}{
		{"/reports/" + created.ID.String(), http.StatusOK},
		{"/reports/" + uuid.New().String(), http.StatusNotFound},
		{"/reports/not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withRole(httptest.NewRequest(http.MethodGet, tt.path, nil), identity.RoleDoctor))
		if rec.Code != tt.want {
			t.Errorf("GET %s: expected %d, got %d", tt.path, tt.want, rec.Code)
		}
	}
}

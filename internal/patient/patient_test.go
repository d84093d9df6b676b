package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"patient-care-portal/internal/identity"
)

func seededRepo(t *testing.T) Repository {
	t.Helper()
	repo := NewMemoryRepository()
	inserted, err := Seed(context.Background(), repo)
	if err != nil || !inserted {
		t.Fatalf("seed: inserted=%v err=%v", inserted, err)
	}
	return repo
}

func TestSeed_Idempotent(t *testing.T) {
	repo := seededRepo(t)

	inserted, err := Seed(context.Background(), repo)
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("second seed must not insert")
	}
	if n, _ := repo.CountPatients(context.Background()); n != 1 {
		t.Errorf("expected one patient, got %d", n)
	}
}

func TestCareSummary_DemoPatient(t *testing.T) {
	svc := NewService(seededRepo(t))

	s, err := svc.CareSummary(context.Background(), DemoPatientID)
	if err != nil {
		t.Fatal(err)
	}
	if s.Patient.Name != "Sarah Johnson" || s.Patient.Stage != "pre-op" {
		t.Errorf("unexpected patient %+v", s.Patient)
	}
	if got := s.Patient.SurgeryDate.Format("2006-01-02"); got != "2024-07-15" {
		t.Errorf("unexpected surgery date %s", got)
	}

	names := make([]string, 0, len(s.Medications))
	for _, m := range s.Medications {
		names = append(names, m.Name+" "+m.Dosage)
	}
	if got := strings.Join(names, ", "); got != "Aspirin 81mg, Metoprolol 50mg, Atorvastatin 40mg" {
		t.Errorf("unexpected medications %s", got)
	}
	if len(s.Instructions) != 1 || s.Instructions[0].Type != "pre-op" {
		t.Errorf("unexpected instructions %+v", s.Instructions)
	}
	if s.Adherence != 0 {
		t.Errorf("expected 0%% adherence, got %d", s.Adherence)
	}
}

func TestSetMedicationTaken(t *testing.T) {
	repo := seededRepo(t)
	svc := NewService(repo)
	meds, _ := repo.ListMedications(context.Background(), DemoPatientID)

	s, err := svc.SetMedicationTaken(context.Background(), DemoPatientID, meds[0].ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Medications[0].TakenToday || s.Adherence != 33 {
		t.Errorf("expected first medication taken and 33%% adherence, got %+v", s)
	}

	if _, err := svc.SetMedicationTaken(context.Background(), DemoPatientID, uuid.New(), true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAdherence(t *testing.T) {
	tests := []struct {
		taken, total int
		want         int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
	}
	for _, tt := range tests {
		meds := make([]Medication, tt.total)
		for i := 0; i < tt.taken; i++ {
			meds[i].TakenToday = true
		}
		if got := Adherence(meds); got != tt.want {
			t.Errorf("Adherence(%d/%d) = %d, want %d", tt.taken, tt.total, got, tt.want)
		}
	}
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(NewService(seededRepo(t))))

	nurse := identity.DemoProfile(identity.RoleNurse)
	asNurse := func(req *http.Request) *http.Request {
		return req.WithContext(identity.WithProfile(req.Context(), &nurse))
	}

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/patients", "", http.StatusOK},
		{http.MethodGet, "/patients/" + DemoPatientID.String(), "", http.StatusOK},
		{http.MethodGet, "/patients/" + uuid.NewString(), "", http.StatusNotFound},
		{http.MethodGet, "/patients/not-a-uuid", "", http.StatusBadRequest},
		{http.MethodPut, "/patients/" + DemoPatientID.String() + "/medications/" + uuid.NewString() + "/taken", `{"taken":true}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, asNurse(httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))))
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, asNurse(httptest.NewRequest(http.MethodGet, "/patients", nil)))
	var body struct {
		Patients []Patient `json:"patients"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Patients) != 1 {
		t.Errorf("expected one patient, got %s", rec.Body.String())
	}
}

func TestHandler_RosterRequiresCareRole(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(NewService(seededRepo(t))))

	tests := []struct {
		role identity.Role
		want int
	}{
		{identity.RolePatient, http.StatusForbidden},
		{identity.RoleCareGiver, http.StatusOK},
		{identity.RoleDoctor, http.StatusOK},
	}
	for _, tt := range tests {
		p := identity.DemoProfile(tt.role)
		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req.WithContext(identity.WithProfile(req.Context(), &p)))
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.role, tt.want, rec.Code)
		}
	}
}

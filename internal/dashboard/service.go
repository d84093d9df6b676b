package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"patient-care-portal/internal/identity"
	"patient-care-portal/internal/patient"
)

// CareSummaries is the part of the patient service the dashboards read.
type CareSummaries interface {
	CareSummary(ctx context.Context, id uuid.UUID) (*patient.CareSummary, error)
}

type Stat struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type View struct {
	Role     identity.Role        `json:"role"`
	Title    string               `json:"title"`
	Greeting string               `json:"greeting"`
	Tabs     []string             `json:"tabs"`
	Stats    []Stat               `json:"stats,omitempty"`
	Care     *patient.CareSummary `json:"care,omitempty"`
}

type layout struct {
	title  string
	doctor bool
	tabs   []string
	stats  []Stat
}

var layouts = map[identity.Role]layout{
	identity.RolePatient: {
		title: "Patient Portal",
		tabs:  []string{"dashboard", "profile", "medications", "symptoms", "instructions", "chat"},
	},
	identity.RoleDoctor: {
		title:  "Doctor Portal",
		doctor: true,
		tabs:   []string{"dashboard", "patients", "reports", "messages"},
		stats:  []Stat{{"Active Patients", 24}, {"Reports Today", 8}, {"Urgent Cases", 3}},
	},
	identity.RoleSurgeon: {
		title:  "Surgical Portal",
		doctor: true,
		tabs:   []string{"dashboard", "schedule", "patients", "reports"},
		stats:  []Stat{{"Surgeries Today", 3}, {"Pending Cases", 7}, {"Completed", 15}},
	},
	identity.RoleNurse: {
		title: "Nursing Portal",
		tabs:  []string{"dashboard", "patients", "medications", "vitals"},
		stats: []Stat{{"Assigned Patients", 12}, {"Medications Due", 8}, {"Pending Tasks", 5}},
	},
	identity.RoleCareGiver: {
		title: "Care Giver Portal",
		tabs:  []string{"dashboard", "patients", "schedule", "communication"},
		stats: []Stat{{"Patients Under Care", 6}, {"Visits Today", 4}, {"Alerts", 2}},
	},
}

type Service interface {
	Build(ctx context.Context, p identity.Profile) (*View, error)
}

type service struct {
	care      CareSummaries
	patientID uuid.UUID
}

// NewService builds dashboards that feature the care summary of patientID.
func NewService(care CareSummaries, patientID uuid.UUID) Service {
	return &service{care: care, patientID: patientID}
}

// Build picks the dashboard for the profile's role. Unknown roles get the
// patient dashboard. A missing care summary leaves Care empty instead of
// failing the whole view.
func (s *service) Build(ctx context.Context, p identity.Profile) (*View, error) {
	role := p.Role
	l, ok := layouts[role]
	if !ok {
		role = identity.RolePatient
		l = layouts[role]
	}

	v := &View{
		Role:     role,
		Title:    l.title,
		Greeting: greeting(p, role, l.doctor),
		Tabs:     l.tabs,
		Stats:    l.stats,
	}

	care, err := s.care.CareSummary(ctx, s.patientID)
	switch {
	case err == nil:
		v.Care = care
	case errors.Is(err, patient.ErrNotFound):
		zerolog.Ctx(ctx).Debug().Str("patient_id", s.patientID.String()).Msg("featured patient not seeded")
	default:
		return nil, err
	}
	return v, nil
}

func greeting(p identity.Profile, role identity.Role, doctor bool) string {
	if role == identity.RolePatient {
		return "Welcome back, " + p.FirstName + "!"
	}
	name := p.FullName()
	if doctor && !strings.HasPrefix(name, "Dr.") {
		name = "Dr. " + name
	}
	return "Welcome, " + name
}

package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DemoPatientID is the fixed id of the seeded demo patient.
var DemoPatientID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

// Seed inserts the demo patient, medications and pre-op instruction when no
// patient exists yet. It reports whether anything was inserted.
func Seed(ctx context.Context, repo Repository) (bool, error) {
	n, err := repo.CountPatients(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	p := &Patient{
		ID:           DemoPatientID,
		Name:         "Sarah Johnson",
		Diagnosis:    "Coronary Artery Disease",
		Intervention: "Coronary Artery Bypass Graft (CABG)",
		SurgeryDate:  time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC),
		Stage:        "pre-op",
	}
	if err := repo.CreatePatient(ctx, p); err != nil {
		return false, fmt.Errorf("seed patient: %w", err)
	}

	meds := []Medication{
		{Name: "Aspirin", Dosage: "81mg", Frequency: "Daily"},
		{Name: "Metoprolol", Dosage: "50mg", Frequency: "Twice daily"},
		{Name: "Atorvastatin", Dosage: "40mg", Frequency: "Daily"},
	}
	for i := range meds {
		meds[i].ID = uuid.New()
		meds[i].PatientID = p.ID
		if err := repo.AddMedication(ctx, &meds[i]); err != nil {
			return false, fmt.Errorf("seed medication %s: %w", meds[i].Name, err)
		}
	}

	in := &Instruction{
		ID:             uuid.New(),
		PatientID:      p.ID,
		Type:           "pre-op",
		OriginalText:   "Patient must maintain NPO status for a minimum of 8 hours prior to the scheduled surgical intervention to reduce aspiration risk during anesthetic induction.",
		SimplifiedText: "Don't eat or drink anything for 8 hours before your surgery. This keeps you safe during anesthesia.",
	}
	if err := repo.AddInstruction(ctx, in); err != nil {
		return false, fmt.Errorf("seed instruction: %w", err)
	}
	return true, nil
}

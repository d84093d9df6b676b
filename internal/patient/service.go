package patient

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	ListPatients(ctx context.Context) ([]Patient, error)
	CareSummary(ctx context.Context, id uuid.UUID) (*CareSummary, error)
	SetMedicationTaken(ctx context.Context, patientID, medicationID uuid.UUID, taken bool) (*CareSummary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListPatients(ctx context.Context) ([]Patient, error) {
	return s.repo.ListPatients(ctx)
}

func (s *service) CareSummary(ctx context.Context, id uuid.UUID) (*CareSummary, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	meds, err := s.repo.ListMedications(ctx, id)
	if err != nil {
		return nil, err
	}
	instructions, err := s.repo.ListInstructions(ctx, id)
	if err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []Medication{}
	}
	if instructions == nil {
		instructions = []Instruction{}
	}
	return &CareSummary{
		Patient:      *p,
		Medications:  meds,
		Instructions: instructions,
		Adherence:    Adherence(meds),
	}, nil
}

func (s *service) SetMedicationTaken(ctx context.Context, patientID, medicationID uuid.UUID, taken bool) (*CareSummary, error) {
	if err := s.repo.SetMedicationTaken(ctx, patientID, medicationID, taken); err != nil {
		return nil, err
	}
	return s.CareSummary(ctx, patientID)
}

package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CountPatients(ctx context.Context) (int, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
	CreatePatient(ctx context.Context, p *Patient) error

	ListMedications(ctx context.Context, patientID uuid.UUID) ([]Medication, error)
	AddMedication(ctx context.Context, m *Medication) error
	SetMedicationTaken(ctx context.Context, patientID, medicationID uuid.UUID, taken bool) error

	ListInstructions(ctx context.Context, patientID uuid.UUID) ([]Instruction, error)
	AddInstruction(ctx context.Context, in *Instruction) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) CountPatients(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}

const patientColumns = `id, COALESCE(profile_id, ''), name, COALESCE(diagnosis, ''), COALESCE(intervention, ''), COALESCE(surgery_date, 'epoch'::date), COALESCE(stage, ''), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(s scanner) (Patient, error) {
	var p Patient
	err := s.Scan(&p.ID, &p.ProfileID, &p.Name, &p.Diagnosis, &p.Intervention, &p.SurgeryDate, &p.Stage, &p.CreatedAt)
	return p, err
}

func (r *postgresRepo) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (r *postgresRepo) CreatePatient(ctx context.Context, p *Patient) error {
	query := `
		INSERT INTO patients (id, profile_id, name, diagnosis, intervention, surgery_date, stage)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.ProfileID, p.Name, p.Diagnosis, p.Intervention, p.SurgeryDate, p.Stage).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListMedications(ctx context.Context, patientID uuid.UUID) ([]Medication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, patient_id, name, dosage, frequency, taken_today FROM medications WHERE patient_id = $1 ORDER BY created_at, name`,
		patientID)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	var out []Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Name, &m.Dosage, &m.Frequency, &m.TakenToday); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) AddMedication(ctx context.Context, m *Medication) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medications (id, patient_id, name, dosage, frequency, taken_today) VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.PatientID, m.Name, m.Dosage, m.Frequency, m.TakenToday)
	if err != nil {
		return fmt.Errorf("add medication: %w", err)
	}
	return nil
}

func (r *postgresRepo) SetMedicationTaken(ctx context.Context, patientID, medicationID uuid.UUID, taken bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE medications SET taken_today = $3 WHERE id = $2 AND patient_id = $1`,
		patientID, medicationID, taken)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListInstructions(ctx context.Context, patientID uuid.UUID) ([]Instruction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, patient_id, instruction_type, original_text, COALESCE(simplified_text, '') FROM instructions WHERE patient_id = $1 ORDER BY created_at`,
		patientID)
	if err != nil {
		return nil, fmt.Errorf("list instructions: %w", err)
	}
	defer rows.Close()

	var out []Instruction
	for rows.Next() {
		var in Instruction
		if err := rows.Scan(&in.ID, &in.PatientID, &in.Type, &in.OriginalText, &in.SimplifiedText); err != nil {
			return nil, fmt.Errorf("scan instruction: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *postgresRepo) AddInstruction(ctx context.Context, in *Instruction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO instructions (id, patient_id, instruction_type, original_text, simplified_text) VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
		in.ID, in.PatientID, in.Type, in.OriginalText, in.SimplifiedText)
	if err != nil {
		return fmt.Errorf("add instruction: %w", err)
	}
	return nil
}

// memoryRepo keeps everything in maps and preserves insertion order per
// patient.
type memoryRepo struct {
	mu           sync.RWMutex
	patients     map[uuid.UUID]Patient
	medications  map[uuid.UUID][]Medication
	instructions map[uuid.UUID][]Instruction
}

func NewMemoryRepository() Repository {
	return &memoryRepo{
		patients:     make(map[uuid.UUID]Patient),
		medications:  make(map[uuid.UUID][]Medication),
		instructions: make(map[uuid.UUID][]Instruction),
	}
}

func (r *memoryRepo) CountPatients(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patients), nil
}

func (r *memoryRepo) ListPatients(ctx context.Context) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) CreatePatient(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[p.ID]; ok {
		return fmt.Errorf("create patient: %s already exists", p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.patients[p.ID] = *p
	return nil
}

func (r *memoryRepo) ListMedications(ctx context.Context, patientID uuid.UUID) ([]Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Medication(nil), r.medications[patientID]...), nil
}

func (r *memoryRepo) AddMedication(ctx context.Context, m *Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[m.PatientID]; !ok {
		return ErrNotFound
	}
	r.medications[m.PatientID] = append(r.medications[m.PatientID], *m)
	return nil
}

func (r *memoryRepo) SetMedicationTaken(ctx context.Context, patientID, medicationID uuid.UUID, taken bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meds := r.medications[patientID]
	for i := range meds {
		if meds[i].ID == medicationID {
			meds[i].TakenToday = taken
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepo) ListInstructions(ctx context.Context, patientID uuid.UUID) ([]Instruction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Instruction(nil), r.instructions[patientID]...), nil
}

func (r *memoryRepo) AddInstruction(ctx context.Context, in *Instruction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[in.PatientID]; !ok {
		return ErrNotFound
	}
	r.instructions[in.PatientID] = append(r.instructions[in.PatientID], *in)
	return nil
}

package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("report not found")

type Repository interface {
	Create(ctx context.Context, r *MedicalReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error)
	List(ctx context.Context, limit int) ([]MedicalReport, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const reportColumns = `id, COALESCE(patient_id, ''), COALESCE(generated_by, ''), report_type, urgency_level, natural_language_input, medical_jargon_output, recipients, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (MedicalReport, error) {
	var r MedicalReport
	var recipients pq.StringArray
	err := s.Scan(&r.ID, &r.PatientID, &r.GeneratedBy, &r.ReportType, &r.UrgencyLevel,
		&r.NaturalLanguageInput, &r.MedicalJargonOutput, &recipients, &r.CreatedAt)
	r.Recipients = []string(recipients)
	if r.Recipients == nil {
		r.Recipients = []string{}
	}
	return r, err
}

func (p *postgresRepo) Create(ctx context.Context, r *MedicalReport) error {
	query := `
		INSERT INTO medical_reports (id, patient_id, generated_by, report_type, urgency_level, natural_language_input, medical_jargon_output, recipients)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := p.db.QueryRowContext(ctx, query,
		r.ID, r.PatientID, r.GeneratedBy, string(r.ReportType), r.UrgencyLevel,
		r.NaturalLanguageInput, r.MedicalJargonOutput, pq.Array(r.Recipients),
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (p *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error) {
	r, err := scanReport(p.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM medical_reports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &r, nil
}

func (p *postgresRepo) List(ctx context.Context, limit int) ([]MedicalReport, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM medical_reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []MedicalReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type memoryRepo struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]MedicalReport
}

func NewMemoryRepository() Repository {
	return &memoryRepo{reports: make(map[uuid.UUID]MedicalReport)}
}

func (m *memoryRepo) Create(ctx context.Context, r *MedicalReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[r.ID]; ok {
		return fmt.Errorf("insert report: %s already exists", r.ID)
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memoryRepo) List(ctx context.Context, limit int) ([]MedicalReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]MedicalReport, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

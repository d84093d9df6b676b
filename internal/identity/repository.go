package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

var ErrProfileNotFound = errors.New("profile not found")

type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Profile, error) {
	query := `SELECT id, role, first_name, last_name, license_number, specialization, department, phone FROM profiles WHERE id = $1`

	var p Profile
	var license, specialization, department, phone sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Role, &p.FirstName, &p.LastName,
		&license, &specialization, &department, &phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.LicenseNumber = license.String
	p.Specialization = specialization.String
	p.Department = department.String
	p.Phone = phone.String
	return &p, nil
}

func (r *postgresRepo) Save(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (id, role, first_name, last_name, license_number, specialization, department, phone)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		ON CONFLICT (id) DO UPDATE SET
			role = $2,
			first_name = $3,
			last_name = $4,
			license_number = NULLIF($5, ''),
			specialization = NULLIF($6, ''),
			department = NULLIF($7, ''),
			phone = NULLIF($8, ''),
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, string(p.Role), p.FirstName, p.LastName, p.LicenseNumber, p.Specialization, p.Department, p.Phone)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

type memoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository is used when no database is configured.
func NewMemoryRepository() Repository {
	return &memoryRepo{profiles: make(map[string]Profile)}
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Save(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.ID] = *p
	return nil
}

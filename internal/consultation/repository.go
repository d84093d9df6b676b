package consultation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("consultation not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Save(ctx context.Context, c *Consultation) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	query := `SELECT id, profile_id, history, created_at, updated_at FROM consultations WHERE id = $1`

	var c Consultation
	var historyJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.ProfileID,
		&historyJSON,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &c.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}
	return &c, nil
}

func (r *postgresRepo) Save(ctx context.Context, c *Consultation) error {
	historyJSON, err := json.Marshal(c.History)
	if err != nil {
		return err
	}

	touch(c)

	query := `
		INSERT INTO consultations (id, profile_id, history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			history = $3,
			updated_at = $5
	`
	_, err = r.db.ExecContext(ctx, query, c.ID, c.ProfileID, historyJSON, c.CreatedAt, c.UpdatedAt)
	return err
}

func touch(c *Consultation) {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

type memoryRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Consultation
}

func NewMemoryRepository() Repository {
	return &memoryRepo{items: make(map[uuid.UUID]Consultation)}
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.History = append([]Message(nil), c.History...)
	return &c, nil
}

func (r *memoryRepo) Save(ctx context.Context, c *Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	touch(c)
	stored := *c
	stored.History = append([]Message(nil), c.History...)
	r.items[c.ID] = stored
	return nil
}

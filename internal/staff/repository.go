package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("staff member not found")
	ErrEmailExists = errors.New("staff member with this email already exists")
)

type Repository interface {
	Create(ctx context.Context, m *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	List(ctx context.Context) ([]Staff, error)
	Update(ctx context.Context, m *Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const staffColumns = `id, first_name, last_name, email, password_hash, role, created_at, updated_at`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *postgresRepository) Create(ctx context.Context, m *Staff) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
		INSERT INTO staff (id, first_name, last_name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.PasswordHash, string(m.Role), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert staff member: %w", err)
	}
	return nil
}

func scanStaff(row pgx.Row, m *Staff) error {
	return row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.PasswordHash, &m.Role, &m.CreatedAt, &m.UpdatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	var m Staff
	if err := scanStaff(r.db.QueryRow(ctx, query, id), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select staff member by id %s: %w", id, err)
	}
	return &m, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = $1`

	var m Staff
	if err := scanStaff(r.db.QueryRow(ctx, query, email), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select staff member by email %s: %w", email, err)
	}
	return &m, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff ORDER BY last_name, first_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query staff: %w", err)
	}
	defer rows.Close()

	members := make([]Staff, 0)
	for rows.Next() {
		var m Staff
		if err := scanStaff(rows, &m); err != nil {
			return nil, fmt.Errorf("repository: failed to scan staff member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating staff: %w", err)
	}
	return members, nil
}

func (r *postgresRepository) Update(ctx context.Context, m *Staff) error {
	query := `
		UPDATE staff
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5, role = $6, updated_at = $7
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.PasswordHash, string(m.Role), time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to update staff member %s: %w", m.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete staff member %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// ErrTableBusy is returned when deleting a table that still has an active
// order.
var ErrTableBusy = errors.New("table has an active order and cannot be deleted")

type Service interface {
	CreateTable(ctx context.Context, t *Table) (*Table, error)
	GetTableByID(ctx context.Context, id uuid.UUID) (*Table, error)
	ListTables(ctx context.Context) ([]Table, error)
	UpdateTable(ctx context.Context, t *Table) error
	DeleteTable(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateTable(ctx context.Context, t *Table) (*Table, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate table id: %w", err)
	}
	t.ID = id

	if err := s.repo.Create(ctx, t); err != nil {
		log.Error().Err(err).Msg("service: failed to create table")
		return nil, fmt.Errorf("service: failed to create table: %w", err)
	}

	log.Info().Stringer("table_id", t.ID).Str("name", t.Name).Msg("service: table created")
	return t, nil
}

func (s *service) GetTableByID(ctx context.Context, id uuid.UUID) (*Table, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch table: %w", err)
	}
	return t, nil
}

func (s *service) ListTables(ctx context.Context) ([]Table, error) {
	tables, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list tables: %w", err)
	}
	return tables, nil
}

func (s *service) UpdateTable(ctx context.Context, t *Table) error {
	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return ErrTableNotFound
		}
		return fmt.Errorf("service: failed to update table: %w", err)
	}
	return nil
}

func (s *service) DeleteTable(ctx context.Context, id uuid.UUID) error {
	busy, err := s.repo.HasActiveOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to check table orders: %w", err)
	}
	if busy {
		log.Warn().Stringer("table_id", id).Msg("service: refusing to delete table with active order")
		return ErrTableBusy
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return ErrTableNotFound
		}
		return fmt.Errorf("service: failed to delete table: %w", err)
	}

	log.Info().Stringer("table_id", id).Msg("service: table deleted")
	return nil
}
